package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Email        string    `bun:"email,unique,notnull" json:"email"`
	FullName     string    `bun:"full_name,notnull" json:"fullName"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         Role      `bun:"role,notnull" json:"role"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

type Movie struct {
	bun.BaseModel `bun:"table:movies"`

	ID              int64  `bun:"id,pk,autoincrement" json:"id"`
	Title           string `bun:"title,notnull" json:"title"`
	DurationMinutes int    `bun:"duration_minutes,notnull" json:"durationMinutes"`
	Rating          string `bun:"rating" json:"rating,omitempty"`
}

type Format struct {
	bun.BaseModel `bun:"table:formats"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,unique,notnull" json:"name"`
}

type Language struct {
	bun.BaseModel `bun:"table:languages"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,unique,notnull" json:"name"`
}

// MovieFormat lists the formats a movie can be screened in.
type MovieFormat struct {
	bun.BaseModel `bun:"table:movie_formats"`

	MovieID  int64 `bun:"movie_id,pk"`
	FormatID int64 `bun:"format_id,pk"`
}

// MovieLanguage lists the languages a movie can be screened in.
type MovieLanguage struct {
	bun.BaseModel `bun:"table:movie_languages"`

	MovieID    int64 `bun:"movie_id,pk"`
	LanguageID int64 `bun:"language_id,pk"`
}

type Cinema struct {
	bun.BaseModel `bun:"table:cinemas"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"name,notnull" json:"name"`
	Address string `bun:"address" json:"address,omitempty"`
}

type Theater struct {
	bun.BaseModel `bun:"table:theaters"`

	ID       int64   `bun:"id,pk,autoincrement" json:"id"`
	Name     string  `bun:"name,notnull" json:"name"`
	CinemaID int64   `bun:"cinema_id,notnull" json:"cinemaId"`
	Capacity int     `bun:"capacity,notnull" json:"capacity"`
	Cinema   *Cinema `bun:"rel:belongs-to,join:cinema_id=id" json:"cinema,omitempty"`
}

type Snack struct {
	bun.BaseModel `bun:"table:snacks"`

	ID    int64   `bun:"id,pk,autoincrement" json:"id"`
	Name  string  `bun:"name,notnull" json:"name"`
	Price float64 `bun:"price,notnull" json:"price"`
}

type Promotion struct {
	bun.BaseModel `bun:"table:promotions"`

	ID          int64   `bun:"id,pk,autoincrement" json:"id"`
	Code        string  `bun:"code,unique,notnull" json:"code"`
	Description string  `bun:"description" json:"description,omitempty"`
	Price       float64 `bun:"price,notnull" json:"price"`
}
