package models

import "time"

// Fornecedor é dono exclusivo dos seus pagamentos; removê-lo remove os pagamentos.
type Fornecedor struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Nome      string    `gorm:"size:255;not null" json:"nome"`
	NIF       string    `gorm:"size:32" json:"nif"`
	Email     string    `gorm:"size:255" json:"email"`
	Telefone  string    `gorm:"size:32" json:"telefone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Preenchido pelo serviço na leitura; a persistência é a coleção de pagamentos.
	Pagamentos []Pagamento `gorm:"-" json:"pagamentos,omitempty"`
}

func (f Fornecedor) Chave() string { return f.ID }

func (f Fornecedor) Clone() Fornecedor {
	c := f
	if f.Pagamentos != nil {
		c.Pagamentos = make([]Pagamento, len(f.Pagamentos))
		for i, p := range f.Pagamentos {
			c.Pagamentos[i] = p.Clone()
		}
	}
	return c
}
