package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"lexdesk-backend/models"
)

// Base system prompts for each AI operation. Tenant overrides are appended
// after a fixed separator, never replacing the base instructions.

const tenantPromptSeparator = "\n\nINSTRUÇÕES ADICIONAIS DO ESCRITÓRIO:\n"

const petitionAnalysisPromptFmt = `Você é um especialista jurídico brasileiro. Analise os fatos e documentos do caso de %s, referente a %s.
Extraia todas as informações relevantes, identifique as teses jurídicas aplicáveis, e gere entre 5 e 8 perguntas estratégicas e objetivas que, quando respondidas pelo advogado, permitirão construir uma petição mais precisa, personalizada e com maior chance de êxito.
As perguntas devem ser formuladas em linguagem simples, direta, e jurídica quando necessário.
Retorne APENAS um JSON válido com esta estrutura: { "resumo": "string com resumo do caso", "teses": ["tese1", "tese2"], "perguntas": [{"id": 1, "pergunta": "string", "tipo": "text|radio|checkbox", "opcoes": ["opcao1"] }] }`

const judgeAnalysisPromptFmt = `Você é um julgador experiente e imparcial do sistema jurídico brasileiro. Analise a petição apresentada e os documentos do caso.
Avalie a coerência lógica, a fundamentação jurídica, a suficiência dos argumentos, as provas apresentadas e os pedidos formulados.
Com base nesta análise, gere entre 4 e 6 perguntas estratégicas que, quando respondidas pelo advogado, permitirão um relatório de análise mais preciso e útil.
Retorne APENAS um JSON válido: { "resumo_peticao": "string", "impressao_inicial": "string", "perguntas": [{"id": 1, "pergunta": "string", "tipo": "text|radio|checkbox", "opcoes": []}] }

DESCRIÇÃO DO CASO: %s%s`

const structurePromptFmt = `Com base nos fatos, documentos analisados e respostas estratégicas abaixo, gere a estrutura completa da petição de %s na área de %s.
Inclua: endereçamento, qualificação das partes, todos os tópicos com subtópicos relevantes e um resumo do que cada tópico conterá, e os pedidos finais.
Siga as normas processuais brasileiras.
%sRetorne APENAS um JSON válido: { "enderecamento": "string", "partes": {"autor": "...", "reu": "..."}, "topicos": [{"id": "1", "titulo": "string", "resumo": "string", "subtopicos": ["..."]}], "pedidos": ["pedido1"] }

RESUMO DO CASO: %s
TESES IDENTIFICADAS: %s
FATOS: %s
RESPOSTAS ESTRATÉGICAS:
%s`

const petitionGenerationPromptFmt = `Você é um advogado especialista em %s brasileiro, com 20 anos de experiência e excelência em redação de peças processuais.
Redija a petição conforme a estrutura fornecida, usando linguagem jurídica formal, precisa e persuasiva.
Fundamente cada argumento em doutrina e jurisprudência quando pertinente.
Siga o estilo e padrões das melhores petições brasileiras.
A petição deve ser completa, coesa e pronta para protocolo.
Área: %s. Tipo: %s.

Use a estrutura de seções com marcações claras como:
## NOME DA SEÇÃO
para cada seção principal da petição.`

const judgeReportPrompt = `Você é um juiz federal brasileiro com 25 anos de experiência. Analise a petição e os documentos apresentados com rigor técnico e imparcialidade total.
Seu relatório deve identificar:
(1) Pontos fortes da petição
(2) Pontos fracos e falhas argumentativas
(3) Lacunas probatórias
(4) Riscos de insucesso e por quê
(5) Sugestões concretas de melhoria com trechos alternativos prontos para uso
(6) Avaliação geral de probabilidade de êxito (Alta/Média/Baixa) com justificativa

Seja direto, técnico e construtivo. O advogado usará este relatório para melhorar sua peça.
Retorne APENAS um JSON válido com esta estrutura:
{
  "pontos_fortes": ["string"],
  "pontos_fracos": ["string"],
  "lacunas_probatorias": ["string"],
  "riscos": ["string"],
  "probabilidade_exito": "Alta|Média|Baixa",
  "justificativa_probabilidade": "string",
  "sugestoes": [{"titulo": "string", "texto": "string"}]
}`

const chatSystemPromptFmt = `Você é um assistente jurídico especializado em escritórios de advocacia brasileiros. Você apoia o atendimento ao cliente e a equipe do escritório nas seguintes tarefas:
(1) Análise jurídica preliminar do caso apresentado
(2) Orientação sobre direitos do cliente conforme a legislação brasileira
(3) Identificação de teses jurídicas aplicáveis
(4) Elaboração de propostas de honorários profissionais
(5) Quebra de objeções para fechamento de contratos
(6) Esclarecimento de dúvidas jurídicas gerais
(7) Preparação de resumos e relatórios de atendimento
Áreas de atuação do escritório: Cível, Trabalhista, Criminal, Previdenciário, Tributário.
Seja profissional, claro e empático. Lembre-se que o usuário está atendendo um cliente real.

%s`

const chatReportPromptFmt = `Gere um relatório estruturado de atendimento jurídico com base na conversa abaixo.
Retorne APENAS um JSON válido: { "clientName": "string", "area": "string", "resumo_caso": "string", "analise_juridica": "string", "teses": ["string"], "proposta_honorarios": "string ou null", "proximos_passos": ["string"] }

CLIENTE: %s
ÁREA: %s
CONVERSA:
%s`

// applyTenantPrompt appends a tenant override to a base system prompt
func applyTenantPrompt(base, override string) string {
	if override == "" {
		return base
	}
	return base + tenantPromptSeparator + override
}

// formatAnswers renders strategic answers as prompt lines, in stable key
// order. Checkbox answers arrive as lists and are joined with commas.
func formatAnswers(answers models.StrategicAnswers) string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("Pergunta %s: %s", k, answerText(answers[k])))
	}
	return strings.Join(lines, "\n")
}

func answerText(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// validateAnswers checks strategic answers against the generated questions:
// every question must be answered, unknown ids are rejected, and the value
// shape must match the question kind (string for text/radio, non-empty list
// for checkbox).
func validateAnswers(questions []models.StrategicQuestion, answers models.StrategicAnswers) error {
	byID := make(map[string]models.StrategicQuestion, len(questions))
	for _, q := range questions {
		byID[strconv.Itoa(q.ID)] = q
	}

	for key := range answers {
		if _, ok := byID[key]; !ok {
			return fmt.Errorf("%w: answer references unknown question %s", ErrInvalidArgument, key)
		}
	}

	for id, q := range byID {
		value, ok := answers[id]
		if !ok {
			return fmt.Errorf("%w: question %s is unanswered", ErrInvalidArgument, id)
		}
		switch q.Tipo {
		case models.QuestionTypeCheckbox:
			if len(answerList(value)) == 0 {
				return fmt.Errorf("%w: question %s requires at least one option", ErrInvalidArgument, id)
			}
		default:
			if strings.TrimSpace(answerText(value)) == "" {
				return fmt.Errorf("%w: question %s is unanswered", ErrInvalidArgument, id)
			}
		}
	}
	return nil
}

func answerList(v interface{}) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		return nil
	}
}

// formatStructure renders a petition structure as prompt text
func formatStructure(structure *models.PetitionStructure) (topics string, pedidos string, partes string) {
	topicLines := make([]string, 0, len(structure.Topicos))
	for _, t := range structure.Topicos {
		line := fmt.Sprintf("%s: %s", t.Titulo, t.Resumo)
		if len(t.Subtopicos) > 0 {
			line += "\n  - " + strings.Join(t.Subtopicos, "\n  - ")
		}
		topicLines = append(topicLines, line)
	}

	pedidoLines := make([]string, 0, len(structure.Pedidos))
	for i, p := range structure.Pedidos {
		pedidoLines = append(pedidoLines, fmt.Sprintf("%d. %s", i+1, p))
	}

	partesJSON, _ := json.MarshalIndent(structure.Partes, "", "  ")

	return strings.Join(topicLines, "\n\n"), strings.Join(pedidoLines, "\n"), string(partesJSON)
}
