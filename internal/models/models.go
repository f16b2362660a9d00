package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
	Email        string `json:"email"`
	AccessToken  string `gorm:"index"                    json:"-"`
}

type PokemonName struct {
	English  string `json:"english"`
	Japanese string `json:"japanese"`
	Chinese  string `json:"chinese"`
	French   string `json:"french"`
}

// Base stat names follow the seeded pokedex data, where "Sp. Attack" and
// "Sp. Defense" are renamed on import.
type PokemonBase struct {
	HP           int `json:"HP"`
	Attack       int `json:"Attack"`
	Defense      int `json:"Defense"`
	SpeedAttack  int `json:"Speed Attack"`
	SpeedDefense int `json:"Speed Defense"`
	Speed        int `json:"Speed"`
}

type Pokemon struct {
	ID   int         `gorm:"primaryKey"                    json:"id"`
	Name PokemonName `gorm:"embedded;embeddedPrefix:name_" json:"name"`
	Type []string    `gorm:"serializer:json"               json:"type"`
	Base PokemonBase `gorm:"embedded"                      json:"base"`
}

type UsageLog struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	Endpoint  string    `gorm:"not null;index" json:"endpoint"`
	Method    string    `gorm:"not null"       json:"method"`
	Username  string    `gorm:"index"          json:"username"`
	CreatedAt time.Time `gorm:"index"          json:"created_at"`
}

type ErrorLog struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	Endpoint  string    `gorm:"not null;index" json:"endpoint"`
	Method    string    `gorm:"not null"       json:"method"`
	Code      int       `gorm:"not null"       json:"code"`
	Message   string    `json:"message"`
	CreatedAt time.Time `gorm:"index"          json:"created_at"`
}
