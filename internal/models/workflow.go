package models

import "time"

type StatusWorkflow string

const (
	WorkflowEmCurso   StatusWorkflow = "in_progress"
	WorkflowAprovado  StatusWorkflow = "approved"
	WorkflowRejeitado StatusWorkflow = "rejected"
)

type StatusEtapa string

const (
	EtapaPendente  StatusEtapa = "pending"
	EtapaAprovada  StatusEtapa = "approved"
	EtapaRejeitada StatusEtapa = "rejected"
)

// EtapaWorkflow liga uma etapa a um aprovador, por username ou por role.
type EtapaWorkflow struct {
	Role     string      `json:"role"`
	Username string      `json:"username,omitempty"`
	Status   StatusEtapa `json:"status"`
	Comments string      `json:"comments,omitempty"`
	Date     *time.Time  `json:"date,omitempty"`
}

// Workflow é a cadeia sequencial de aprovação anexada a um pagamento.
// CurrentStep só avança; approved e rejected são terminais.
type Workflow struct {
	Status      StatusWorkflow  `json:"status"`
	CurrentStep int             `json:"currentStep"`
	Steps       []EtapaWorkflow `json:"steps"`
}

func (w Workflow) Terminal() bool {
	return w.Status == WorkflowAprovado || w.Status == WorkflowRejeitado
}

// EtapaAtual devolve a etapa apontada por CurrentStep, se existir.
func (w Workflow) EtapaAtual() (EtapaWorkflow, bool) {
	if w.CurrentStep < 0 || w.CurrentStep >= len(w.Steps) {
		return EtapaWorkflow{}, false
	}
	return w.Steps[w.CurrentStep], true
}

func (w Workflow) Clone() Workflow {
	c := w
	if w.Steps != nil {
		c.Steps = make([]EtapaWorkflow, len(w.Steps))
		for i, s := range w.Steps {
			s.Date = cloneTime(s.Date)
			c.Steps[i] = s
		}
	}
	return c
}

// RoleAdmin pode transitar qualquer etapa.
const RoleAdmin = "admin"

// Ator é a identidade que executa uma operação; sempre passada explicitamente.
type Ator struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (a Ator) Admin() bool { return a.Role == RoleAdmin }

// NovoWorkflow cria um workflow em curso na primeira etapa. As etapas
// recebidas são copiadas e reiniciadas para pending.
func NovoWorkflow(etapas []EtapaWorkflow) Workflow {
	w := Workflow{Status: WorkflowEmCurso, Steps: make([]EtapaWorkflow, len(etapas))}
	for i, e := range etapas {
		w.Steps[i] = EtapaWorkflow{Role: e.Role, Username: e.Username, Status: EtapaPendente}
	}
	return w
}
