package memory

import (
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	directory  *directoryRepository
	runHistory *runHistoryRepository
}

var _ interfaces.Repository = &Memory{}

type Option func(*Memory)

// WithAdministratorRoleID sets the role ID reported as administrator
func WithAdministratorRoleID(id model.RoleID) Option {
	return func(m *Memory) {
		m.directory.adminRoleID = id
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		directory:  newDirectoryRepository(),
		runHistory: newRunHistoryRepository(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Memory) Directory() interfaces.DirectoryRepository {
	return m.directory
}

func (m *Memory) DirectoryWriter() interfaces.DirectoryWriter {
	return m.directory
}

func (m *Memory) RunHistory() interfaces.RunHistoryRepository {
	return m.runHistory
}

func (m *Memory) Close() error {
	return nil
}
