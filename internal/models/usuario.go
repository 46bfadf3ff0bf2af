package models

import "time"

// Usuario do painel. Role é texto livre comparado literalmente com as etapas do workflow.
type Usuario struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Nome      string    `gorm:"size:255" json:"nome"`
	Role      string    `gorm:"size:100;not null" json:"role"`
	SenhaHash string    `gorm:"size:255;not null" json:"-"`
	Ativo     bool      `gorm:"not null;default:true" json:"ativo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u Usuario) Chave() string { return u.ID }

func (u Usuario) Clone() Usuario { return u }

func (u Usuario) Ator() Ator { return Ator{Username: u.Username, Role: u.Role} }
