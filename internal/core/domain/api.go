package domain

// RegisterRequest is the JSON body of POST /register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse confirms a registration. No token is issued here.
type RegisterResponse struct {
	Message string `json:"message"`
}

// TokenRequest is the form body of POST /token. Username carries the email.
type TokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// TokenResponse is returned on successful authentication.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MeResponse is the public view of the authenticated account.
type MeResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Playlist is a catalog playlist reshaped for clients.
type Playlist struct {
	Name        string `json:"name"`
	ExternalURL string `json:"external_url"`
	ImageURL    string `json:"image_url"`
	Owner       string `json:"owner"`
}

// PlaylistResponse is the body of GET /playlist/{mood}.
type PlaylistResponse struct {
	Mood      string     `json:"mood"`
	Query     string     `json:"query"`
	Playlists []Playlist `json:"playlists"`
}

// PlaylistSearchResponse is the body of GET /playlists.
type PlaylistSearchResponse struct {
	Query     string     `json:"query"`
	Playlists []Playlist `json:"playlists"`
}

// SentimentRequest is the JSON body of POST /sentiment.
type SentimentRequest struct {
	Text string `json:"text" binding:"required"`
}

// SentimentResponse carries the polarity score, its label and the mood the
// label maps to in the playlist table.
type SentimentResponse struct {
	Polarity  float64 `json:"polarity"`
	Sentiment string  `json:"sentiment"`
	Mood      string  `json:"mood"`
}
