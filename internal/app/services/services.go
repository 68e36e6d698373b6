package services

// Services defined in this package:
// - AuthService: accounts, credentials, access tokens and email verification.
//   It is the backend every session.Provider talks to.
