package engine

//go:generate moq -pkg mocks -out ./mocks/block_source_mock.go . BlockSource
//go:generate moq -pkg mocks -out ./mocks/notifier_mock.go . Notifier
