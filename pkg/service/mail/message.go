package mail

import (
	"bytes"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

const defaultAttachmentType = "application/octet-stream"

// buildMessage renders an RFC 5322 message: the HTML body inline and every
// attachment as a separate part.
func buildMessage(n *model.Notification, from *mail.Address, to []*mail.Address, replyTo *mail.Address, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", to)
	if replyTo != nil {
		h.SetAddressList("Reply-To", []*mail.Address{replyTo})
	}
	h.SetSubject(n.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, goerr.Wrap(err, "failed to generate message ID")
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create mail writer")
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create inline part")
	}
	var th mail.InlineHeader
	th.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	w, err := tw.CreatePart(th)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create body part")
	}
	if _, err := io.WriteString(w, n.HTMLBody); err != nil {
		return nil, goerr.Wrap(err, "failed to write body")
	}
	if err := w.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close body part")
	}
	if err := tw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close inline part")
	}

	for _, a := range n.Attachments {
		contentType := a.MimeType
		if contentType == "" {
			contentType = defaultAttachmentType
		}

		var ah mail.AttachmentHeader
		ah.SetContentType(contentType, nil)
		ah.SetFilename(a.Name)
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create attachment", goerr.V("name", a.Name))
		}
		if _, err := aw.Write(a.Data); err != nil {
			return nil, goerr.Wrap(err, "failed to write attachment", goerr.V("name", a.Name))
		}
		if err := aw.Close(); err != nil {
			return nil, goerr.Wrap(err, "failed to close attachment", goerr.V("name", a.Name))
		}
	}

	if err := mw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close mail writer")
	}
	return buf.Bytes(), nil
}
