package models

import (
	"database/sql/driver"
	"encoding/json"
)

// Question answer kinds as produced by the analysis stage.
const (
	QuestionTypeText     = "text"
	QuestionTypeRadio    = "radio"
	QuestionTypeCheckbox = "checkbox"
)

// StrategicQuestion is one AI-generated clarifying question presented to the
// lawyer between the analysis and structuring stages.
type StrategicQuestion struct {
	ID       int      `json:"id"`
	Pergunta string   `json:"pergunta"`
	Tipo     string   `json:"tipo"` // "text", "radio", "checkbox"
	Opcoes   []string `json:"opcoes,omitempty"`
}

// InitialAnalysis is the persisted result of the petition analysis stage.
type InitialAnalysis struct {
	Resumo    string              `json:"resumo"`
	Teses     []string            `json:"teses"`
	Perguntas []StrategicQuestion `json:"perguntas"`
}

// Value implements driver.Valuer for JSONB
func (a *InitialAnalysis) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *InitialAnalysis) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// JudgeAnalysis is the persisted result of the judge-review analysis stage.
type JudgeAnalysis struct {
	ResumoPeticao    string              `json:"resumo_peticao"`
	ImpressaoInicial string              `json:"impressao_inicial"`
	Perguntas        []StrategicQuestion `json:"perguntas"`
}

// Value implements driver.Valuer for JSONB
func (a *JudgeAnalysis) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *JudgeAnalysis) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// StrategicAnswers maps question id (as string) to either a string (text and
// radio questions) or a list of strings (checkbox questions).
type StrategicAnswers map[string]interface{}

// Value implements driver.Valuer for JSONB
func (s StrategicAnswers) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *StrategicAnswers) Scan(value interface{}) error {
	if value == nil {
		*s = make(StrategicAnswers)
		return nil
	}
	return scanJSON(value, s)
}

// PetitionTopic is one outline unit of a petition structure.
type PetitionTopic struct {
	ID         string   `json:"id"`
	Titulo     string   `json:"titulo"`
	Resumo     string   `json:"resumo"`
	Subtopicos []string `json:"subtopicos,omitempty"`
}

// PetitionStructure is the persisted result of the structuring stage.
type PetitionStructure struct {
	Enderecamento string            `json:"enderecamento"`
	Partes        map[string]string `json:"partes"`
	Topicos       []PetitionTopic   `json:"topicos"`
	Pedidos       []string          `json:"pedidos"`
}

// Value implements driver.Valuer for JSONB
func (p *PetitionStructure) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *PetitionStructure) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// Success probability labels used by judge reports.
const (
	ProbabilityHigh   = "Alta"
	ProbabilityMedium = "Média"
	ProbabilityLow    = "Baixa"
)

// Suggestion is a concrete improvement proposed by the judge report, with a
// ready-to-use replacement passage.
type Suggestion struct {
	Titulo string `json:"titulo"`
	Texto  string `json:"texto"`
}

// JudgeReport is the structured critique produced by the judge-review pipeline.
type JudgeReport struct {
	PontosFortes               []string     `json:"pontos_fortes"`
	PontosFracos               []string     `json:"pontos_fracos"`
	LacunasProbatorias         []string     `json:"lacunas_probatorias"`
	Riscos                     []string     `json:"riscos"`
	ProbabilidadeExito         string       `json:"probabilidade_exito"`
	JustificativaProbabilidade string       `json:"justificativa_probabilidade"`
	Sugestoes                  []Suggestion `json:"sugestoes"`
}

// Value implements driver.Valuer for JSONB
func (r *JudgeReport) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB
func (r *JudgeReport) Scan(value interface{}) error {
	return scanJSON(value, r)
}

// ChatReport is the structured intake report generated on demand from a chat
// session transcript.
type ChatReport struct {
	ClientName         string   `json:"clientName"`
	Area               string   `json:"area"`
	ResumoCaso         string   `json:"resumo_caso"`
	AnaliseJuridica    string   `json:"analise_juridica"`
	Teses              []string `json:"teses"`
	PropostaHonorarios string   `json:"proposta_honorarios,omitempty"`
	ProximosPassos     []string `json:"proximos_passos"`
}

// scanJSON decodes a JSONB column value into dst, tolerating the different
// raw types pgx may hand back.
func scanJSON(value interface{}, dst interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, dst)
}
