package store

import (
	"context"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
)

// BuscarFundoPorMes devolve o fundo do mês ou apperr.ErrNaoEncontrado.
func BuscarFundoPorMes(ctx context.Context, r Repositorios, mes models.Mes) (models.FundoManeio, error) {
	fundos, err := r.Fundos.Listar(ctx)
	if err != nil {
		return models.FundoManeio{}, err
	}
	for _, f := range fundos {
		if f.Mes == mes {
			return f, nil
		}
	}
	return models.FundoManeio{}, apperr.NaoEncontrado("fundo de maneio", string(mes))
}

// LocalizarMovimento procura um movimento em todos os fundos.
func LocalizarMovimento(ctx context.Context, r Repositorios, movimentoID string) (models.FundoManeio, int, error) {
	fundos, err := r.Fundos.Listar(ctx)
	if err != nil {
		return models.FundoManeio{}, -1, err
	}
	for _, f := range fundos {
		if i := f.IndiceMovimento(movimentoID); i >= 0 {
			return f, i, nil
		}
	}
	return models.FundoManeio{}, -1, apperr.NaoEncontrado("movimento", movimentoID)
}

// PagamentosDoFornecedor lista os pagamentos de um fornecedor pela ordem de criação.
func PagamentosDoFornecedor(ctx context.Context, r Repositorios, fornecedorID string) ([]models.Pagamento, error) {
	todos, err := r.Pagamentos.Listar(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Pagamento{}
	for _, p := range todos {
		if p.FornecedorID == fornecedorID {
			out = append(out, p)
		}
	}
	return out, nil
}
