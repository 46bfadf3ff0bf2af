// Package backup exporta e restaura uma cópia JSON do livro-razão.
// Os utilizadores ficam fora da cópia: as senhas não saem do servidor.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/notificacao"
	"github.com/KromaEnergia/api-tesouraria/internal/relogio"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
)

const versao = 1

type Snapshot struct {
	Versao       int                        `json:"versao"`
	GeradoEm     time.Time                  `json:"geradoEm"`
	Fornecedores []models.Fornecedor        `json:"fornecedores"`
	Pagamentos   []models.Pagamento         `json:"pagamentos"`
	Fundos       []models.FundoManeio       `json:"fundos"`
	Cheques      []models.Cheque            `json:"cheques"`
	Transacoes   []models.TransacaoBancaria `json:"transacoes"`
}

type Service struct {
	ledger  *store.Ledger
	relogio relogio.Relogio
	notif   notificacao.Notificador
	log     *zap.Logger
	dir     string
}

func NewService(ledger *store.Ledger, rel relogio.Relogio, notif notificacao.Notificador, log *zap.Logger, dir string) *Service {
	if dir == "" {
		dir = "backups"
	}
	return &Service{ledger: ledger, relogio: rel, notif: notif, log: log, dir: dir}
}

// Gerar lê todas as coleções dentro de uma unidade de trabalho, para que a
// cópia seja consistente.
func (s *Service) Gerar(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Versao: versao, GeradoEm: s.relogio.Agora()}
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		if snap.Fornecedores, err = r.Fornecedores.Listar(ctx); err != nil {
			return err
		}
		if snap.Pagamentos, err = r.Pagamentos.Listar(ctx); err != nil {
			return err
		}
		if snap.Fundos, err = r.Fundos.Listar(ctx); err != nil {
			return err
		}
		if snap.Cheques, err = r.Cheques.Listar(ctx); err != nil {
			return err
		}
		snap.Transacoes, err = r.Transacoes.Listar(ctx)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	for i := range snap.Fornecedores {
		snap.Fornecedores[i].Pagamentos = nil
	}
	return snap, nil
}

// Exportar grava a cópia em <dir>/backup-<uuid>.json e devolve o caminho.
func (s *Service) Exportar(ctx context.Context) (string, Snapshot, error) {
	snap, err := s.Gerar(ctx)
	if err != nil {
		return "", Snapshot{}, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", Snapshot{}, fmt.Errorf("criar diretório de backup: %w", err)
	}
	dados, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", Snapshot{}, fmt.Errorf("serializar backup: %w", err)
	}
	caminho := filepath.Join(s.dir, fmt.Sprintf("backup-%s.json", uuid.NewString()))
	if err := os.WriteFile(caminho, dados, 0o600); err != nil {
		return "", Snapshot{}, fmt.Errorf("gravar backup: %w", err)
	}
	s.log.Info("backup exportado", zap.String("arquivo", caminho), zap.Int("pagamentos", len(snap.Pagamentos)))
	s.notif.Notificar(ctx, notificacao.Sucesso, "Backup exportado")
	return caminho, snap, nil
}

// Ler carrega uma cópia gravada por Exportar.
func Ler(caminho string) (Snapshot, error) {
	dados, err := os.ReadFile(caminho)
	if err != nil {
		return Snapshot{}, fmt.Errorf("ler backup: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(dados, &snap); err != nil {
		return Snapshot{}, apperr.Validacao("backup malformado: %v", err)
	}
	return snap, nil
}

// validar recusa cópias incoerentes e recalcula o saldo final de cada fundo
// a partir dos movimentos.
func validar(snap *Snapshot) error {
	if snap.Versao != versao {
		return apperr.Validacao("versão de backup não suportada: %d", snap.Versao)
	}
	fornecedores := map[string]bool{}
	for _, f := range snap.Fornecedores {
		if f.ID == "" {
			return apperr.Validacao("fornecedor sem id")
		}
		fornecedores[f.ID] = true
	}
	pagamentos := map[string]models.Pagamento{}
	for _, p := range snap.Pagamentos {
		if p.ID == "" {
			return apperr.Validacao("pagamento sem id")
		}
		if _, ok := pagamentos[p.ID]; ok {
			return apperr.Validacao("pagamento %s repetido", p.ID)
		}
		if !fornecedores[p.FornecedorID] {
			return apperr.Validacao("pagamento %s refere fornecedor inexistente %s", p.ID, p.FornecedorID)
		}
		pagamentos[p.ID] = p
	}

	meses := map[models.Mes]bool{}
	movimentos := map[string]models.Movimento{}
	for i := range snap.Fundos {
		f := &snap.Fundos[i]
		if f.ID == "" {
			return apperr.Validacao("fundo de maneio sem id")
		}
		if meses[f.Mes] {
			return apperr.Validacao("mês %s repetido nos fundos de maneio", f.Mes)
		}
		meses[f.Mes] = true
		if !f.SaldoCorrenteValido() {
			return apperr.Validacao("fundo de maneio %s fica com saldo negativo", f.Mes)
		}
		f.Recalcular()
		for _, m := range f.Movimentos {
			if m.ID == "" {
				return apperr.Validacao("movimento sem id no fundo %s", f.Mes)
			}
			if _, ok := movimentos[m.ID]; ok {
				return apperr.Validacao("movimento %s repetido", m.ID)
			}
			movimentos[m.ID] = m
		}
	}

	cheques := map[string]models.Cheque{}
	for _, c := range snap.Cheques {
		if c.ID == "" {
			return apperr.Validacao("cheque sem id")
		}
		if _, ok := cheques[c.ID]; ok {
			return apperr.Validacao("cheque %s repetido", c.ID)
		}
		cheques[c.ID] = c
	}
	for _, t := range snap.Transacoes {
		if t.ChequeID != nil {
			if _, ok := cheques[*t.ChequeID]; !ok {
				return apperr.Validacao("transação %s refere cheque inexistente %s", t.ID, *t.ChequeID)
			}
		}
		if t.PagamentoID != nil {
			if _, ok := pagamentos[*t.PagamentoID]; !ok {
				return apperr.Validacao("transação %s refere pagamento inexistente %s", t.ID, *t.PagamentoID)
			}
		}
	}
	return validarVinculos(pagamentos, cheques, movimentos)
}

// validarVinculos exige que cada referência entre pagamento e instrumento
// tenha o par de volta.
func validarVinculos(pagamentos map[string]models.Pagamento, cheques map[string]models.Cheque, movimentos map[string]models.Movimento) error {
	for _, p := range pagamentos {
		if p.TransacaoBancariaID != nil {
			c, ok := cheques[*p.TransacaoBancariaID]
			if !ok {
				return apperr.Validacao("pagamento %s refere cheque inexistente %s", p.ID, *p.TransacaoBancariaID)
			}
			if c.PagamentoID == nil || *c.PagamentoID != p.ID {
				return apperr.Validacao("cheque %s não aponta para o pagamento %s", c.ID, p.ID)
			}
		}
		if p.FundoManeioID != nil {
			m, ok := movimentos[*p.FundoManeioID]
			if !ok {
				return apperr.Validacao("pagamento %s refere movimento inexistente %s", p.ID, *p.FundoManeioID)
			}
			if m.PagamentoID == nil || *m.PagamentoID != p.ID {
				return apperr.Validacao("movimento %s não aponta para o pagamento %s", m.ID, p.ID)
			}
		}
	}
	for _, c := range cheques {
		if c.PagamentoID == nil {
			continue
		}
		p, ok := pagamentos[*c.PagamentoID]
		if !ok || p.TransacaoBancariaID == nil || *p.TransacaoBancariaID != c.ID {
			return apperr.Validacao("cheque %s refere pagamento %s sem vínculo de volta", c.ID, *c.PagamentoID)
		}
	}
	for _, m := range movimentos {
		if m.PagamentoID == nil {
			continue
		}
		p, ok := pagamentos[*m.PagamentoID]
		if !ok || p.FundoManeioID == nil || *p.FundoManeioID != m.ID {
			return apperr.Validacao("movimento %s refere pagamento %s sem vínculo de volta", m.ID, *m.PagamentoID)
		}
	}
	return nil
}

// Restaurar substitui o conteúdo do livro-razão pela cópia, tudo ou nada.
func (s *Service) Restaurar(ctx context.Context, snap Snapshot) error {
	fundos := make([]models.FundoManeio, len(snap.Fundos))
	for i, f := range snap.Fundos {
		fundos[i] = f.Clone()
	}
	snap.Fundos = fundos
	if err := validar(&snap); err != nil {
		return err
	}
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		if err := limpar(ctx, r); err != nil {
			return err
		}
		for _, f := range snap.Fornecedores {
			f.Pagamentos = nil
			if _, err := r.Fornecedores.Adicionar(ctx, f); err != nil {
				return err
			}
		}
		for _, p := range snap.Pagamentos {
			if _, err := r.Pagamentos.Adicionar(ctx, p); err != nil {
				return err
			}
		}
		for _, f := range snap.Fundos {
			if _, err := r.Fundos.Adicionar(ctx, f); err != nil {
				return err
			}
		}
		for _, c := range snap.Cheques {
			if _, err := r.Cheques.Adicionar(ctx, c); err != nil {
				return err
			}
		}
		for _, t := range snap.Transacoes {
			if _, err := r.Transacoes.Adicionar(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("backup restaurado", zap.Time("geradoEm", snap.GeradoEm), zap.Int("pagamentos", len(snap.Pagamentos)))
	s.notif.Notificar(ctx, notificacao.Sucesso, "Backup restaurado")
	return nil
}

func limpar(ctx context.Context, r store.Repositorios) error {
	if err := removerTodos(ctx, r.Transacoes); err != nil {
		return err
	}
	if err := removerTodos(ctx, r.Cheques); err != nil {
		return err
	}
	if err := removerTodos(ctx, r.Fundos); err != nil {
		return err
	}
	if err := removerTodos(ctx, r.Pagamentos); err != nil {
		return err
	}
	return removerTodos(ctx, r.Fornecedores)
}

func removerTodos[T store.Entidade[T]](ctx context.Context, c store.Colecao[T]) error {
	itens, err := c.Listar(ctx)
	if err != nil {
		return err
	}
	for _, it := range itens {
		if err := c.Remover(ctx, it.Chave()); err != nil {
			return err
		}
	}
	return nil
}
