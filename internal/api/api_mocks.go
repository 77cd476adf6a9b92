package api

//go:generate moq -pkg mocks -out ./mocks/raffle_engine_mock.go . RaffleEngine
//go:generate moq -pkg mocks -out ./mocks/health_checker_mock.go . HealthChecker
