package guard

//go:generate moq -pkg mocks -out ./mocks/payment_verifier_mock.go . PaymentVerifier
