package model

import "time"

// Kudo marks a repository as a favorite of one user. The JSON id is the
// repository id, so a kudo and the repository it points at share keys.
type Kudo struct {
	PK          uint      `json:"-" yaml:"-" gorm:"column:pk;primaryKey"`
	UserID      string    `json:"user_id" yaml:"user_id" gorm:"column:user_id;type:varchar(255);not null;uniqueIndex:idx_user_repo"`
	RepoID      int64     `json:"id" yaml:"id" gorm:"column:repo_id;not null;uniqueIndex:idx_user_repo"`
	RepoName    string    `json:"full_name" yaml:"full_name" gorm:"column:repo_name;type:varchar(255)"`
	RepoURL     string    `json:"html_url" yaml:"html_url" gorm:"column:repo_url;type:varchar(512)"`
	Language    string    `json:"language" yaml:"language" gorm:"column:language;type:varchar(64)"`
	Description string    `json:"description" yaml:"description" gorm:"column:description;type:text"`
	Notes       string    `json:"notes" yaml:"notes" gorm:"column:notes;type:text"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at" gorm:"column:updated_at"`
}

func (Kudo) TableName() string {
	return "kudos"
}

// KudoFor converts a repository payload into a kudo owned by userID.
func KudoFor(userID string, repo Repository) *Kudo {
	return &Kudo{
		UserID:      userID,
		RepoID:      repo.ID,
		RepoName:    TruncateString(repo.FullName, 255),
		RepoURL:     TruncateString(repo.HTMLURL, 512),
		Language:    TruncateString(repo.Language, 64),
		Description: repo.Description,
		Notes:       repo.Notes,
	}
}

// Repository returns the repository snapshot held by the kudo.
func (k Kudo) Repository() Repository {
	return Repository{
		ID:          k.RepoID,
		FullName:    k.RepoName,
		HTMLURL:     k.RepoURL,
		Language:    k.Language,
		Description: k.Description,
		Notes:       k.Notes,
	}
}
