package models

// DefinirID é usado pelo armazenamento para atribuir ids gerados.
func (f *Fornecedor) DefinirID(id string)        { f.ID = id }
func (p *Pagamento) DefinirID(id string)         { p.ID = id }
func (f *FundoManeio) DefinirID(id string)       { f.ID = id }
func (c *Cheque) DefinirID(id string)            { c.ID = id }
func (t *TransacaoBancaria) DefinirID(id string) { t.ID = id }
func (u *Usuario) DefinirID(id string)           { u.ID = id }
