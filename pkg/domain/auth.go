package domain

// ChallengeRequest asks the server for a sign-in challenge.
type ChallengeRequest struct {
	Principal Principal `json:"principal"`
}

// Challenge is the random payload the principal must sign.
type Challenge struct {
	Challenge []byte `json:"challenge"`
}

// ChallengeResponse carries the signed challenge back to the server.
type ChallengeResponse struct {
	Principal Principal `json:"principal"`
	Challenge []byte    `json:"challenge"`
	Response  []byte    `json:"response"`
}

// TokenResponse is returned once a challenge response is accepted.
type TokenResponse struct {
	Token string `json:"token"`
}

// TokenCheck is returned by the token check endpoint.
type TokenCheck struct {
	Principal Principal `json:"principal"`
}
