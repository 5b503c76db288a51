package model

// Owner is the account a GitHub repository belongs to.
type Owner struct {
	Login string `json:"login" yaml:"login"`
	ID    int64  `json:"id" yaml:"id"`
}

// Repository is a GitHub search result. The client never changes it.
type Repository struct {
	ID              int64  `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	FullName        string `json:"full_name" yaml:"full_name"`
	HTMLURL         string `json:"html_url" yaml:"html_url"`
	Description     string `json:"description" yaml:"description"`
	Language        string `json:"language" yaml:"language"`
	StargazersCount int64  `json:"stargazers_count" yaml:"stargazers_count"`
	Owner           Owner  `json:"owner" yaml:"owner"`
	// Notes only travels from client to server on kudo updates.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// SearchResult mirrors the body of the repository search endpoint.
type SearchResult struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []Repository `json:"items"`
}
