package ledger

//go:generate moq -pkg mocks -out ./mocks/reader_mock.go . Reader
