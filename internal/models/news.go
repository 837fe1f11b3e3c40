package models

import "time"

type NewsLanguage string

const (
	NewsLanguageEnglish NewsLanguage = "english"
	NewsLanguageHindi   NewsLanguage = "hindi"
)

type News struct {
	ID        string
	Title     string
	Content   string
	Language  NewsLanguage
	Images    []string
	Author    string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
