package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
)

// GormBackend persiste o livro-razão numa base relacional (Postgres em
// produção, SQLite nos testes). Falhas que não sejam de dados chegam a quem
// chama como apperr.ErrStoreIndisponivel.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (b *GormBackend) Nome() string { return "gorm:" + b.db.Dialector.Name() }

// Migrar cria ou atualiza as tabelas do livro-razão.
func (b *GormBackend) Migrar() error {
	err := b.db.AutoMigrate(
		&models.Fornecedor{},
		&models.Pagamento{},
		&models.FundoManeio{},
		&models.Cheque{},
		&models.TransacaoBancaria{},
		&models.Usuario{},
	)
	if err != nil {
		return apperr.Indisponivel("migrar", err)
	}
	return nil
}

// Ping verifica se a base responde.
func (b *GormBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return apperr.Indisponivel("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.Indisponivel("ping", err)
	}
	return nil
}

func (b *GormBackend) Repositorios() Repositorios {
	return repositoriosGorm(b.db)
}

func (b *GormBackend) Transacao(ctx context.Context, fn func(Repositorios) error) error {
	var errFn error
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		errFn = fn(repositoriosGorm(tx))
		return errFn
	})
	if err != nil && errFn == nil {
		return apperr.Indisponivel("transação", err)
	}
	return err
}

func repositoriosGorm(db *gorm.DB) Repositorios {
	return Repositorios{
		Fornecedores: &colecaoGorm[models.Fornecedor]{db: db, entidade: "fornecedor"},
		Pagamentos:   &colecaoGorm[models.Pagamento]{db: db, entidade: "pagamento"},
		Fundos:       &colecaoGorm[models.FundoManeio]{db: db, entidade: "fundo de maneio"},
		Cheques:      &colecaoGorm[models.Cheque]{db: db, entidade: "cheque"},
		Transacoes:   &colecaoGorm[models.TransacaoBancaria]{db: db, entidade: "transação bancária"},
		Usuarios:     &colecaoGorm[models.Usuario]{db: db, entidade: "usuário"},
	}
}

type colecaoGorm[T Entidade[T]] struct {
	db       *gorm.DB
	entidade string
}

func (c *colecaoGorm[T]) Listar(ctx context.Context) ([]T, error) {
	var itens []T
	if err := c.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&itens).Error; err != nil {
		return nil, c.traduzir("listar", "", err)
	}
	if itens == nil {
		itens = []T{}
	}
	return itens, nil
}

func (c *colecaoGorm[T]) BuscarPorID(ctx context.Context, id string) (T, error) {
	var item T
	if err := c.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		var zero T
		return zero, c.traduzir("buscar", id, err)
	}
	return item, nil
}

func (c *colecaoGorm[T]) Adicionar(ctx context.Context, item T) (T, error) {
	if item.Chave() == "" {
		atribuirID(&item)
	} else {
		existente, err := c.BuscarPorID(ctx, item.Chave())
		if err == nil {
			return existente, nil
		}
		if !errors.Is(err, apperr.ErrNaoEncontrado) {
			var zero T
			return zero, err
		}
	}
	if err := c.db.WithContext(ctx).Create(&item).Error; err != nil {
		var zero T
		return zero, c.traduzir("inserir", item.Chave(), err)
	}
	return item, nil
}

func (c *colecaoGorm[T]) Atualizar(ctx context.Context, id string, patch func(*T) error) (T, error) {
	var zero T
	atual, err := c.BuscarPorID(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := patch(&atual); err != nil {
		return zero, err
	}
	if atual.Chave() != id {
		return zero, apperr.Validacao("o id de %s não pode ser alterado", c.entidade)
	}
	if err := c.db.WithContext(ctx).Save(&atual).Error; err != nil {
		return zero, c.traduzir("atualizar", id, err)
	}
	return atual, nil
}

func (c *colecaoGorm[T]) Remover(ctx context.Context, id string) error {
	var item T
	res := c.db.WithContext(ctx).Where("id = ?", id).Delete(&item)
	if res.Error != nil {
		return c.traduzir("remover", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NaoEncontrado(c.entidade, id)
	}
	return nil
}

// traduzir separa erros de dados (registo em falta, chave duplicada) de
// falhas do meio, que são as únicas que acionam o fallback.
func (c *colecaoGorm[T]) traduzir(op, id string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NaoEncontrado(c.entidade, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Validacao("%s duplicado", c.entidade)
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return apperr.Validacao("%s viola uma restrição: %v", c.entidade, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apperr.Indisponivel(op+" "+c.entidade, err)
}
