package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{
		botToken:  botToken,
		channelID: channelID,
	}
}

// NewMailForTest creates a Mail config for testing purposes
func NewMailForTest(host, username, password string) *Mail {
	return &Mail{
		host:     host,
		port:     587,
		username: username,
		password: password,
	}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, bucket, localDir string) *Storage {
	return &Storage{
		backend:  backend,
		bucket:   bucket,
		localDir: localDir,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, fixturePath string) *Repository {
	return &Repository{
		backend:     backend,
		fixturePath: fixturePath,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}
