package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/cli/config"
	"github.com/secmon-lab/usersreport/pkg/repository/fixture"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdImport() *cli.Command {
	var repoCfg config.Repository
	var source string

	var flags []cli.Flag
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "source",
		Aliases:     []string{"f"},
		Usage:       "TOML directory snapshot to import (required)",
		Required:    true,
		Destination: &source,
	})

	return &cli.Command{
		Name:  "import",
		Usage: "Import a directory snapshot into the repository backend",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			f, err := fixture.Load(source)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			if err := f.Apply(ctx, repo.DirectoryWriter()); err != nil {
				return goerr.Wrap(err, "failed to import directory snapshot", goerr.V("source", source))
			}

			logger.Info("Directory snapshot imported",
				"source", source,
				"backend", repoCfg.Backend(),
				"roles", len(f.Roles),
				"users", len(f.Users),
			)
			return nil
		},
	}
}
