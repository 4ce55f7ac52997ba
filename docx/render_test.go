package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"lexdesk-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readZipPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, file := range reader.File {
		if file.Name == name {
			rc, err := file.Open()
			require.NoError(t, err)
			defer rc.Close()
			content, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(content)
		}
	}
	t.Fatalf("part %s not found in archive", name)
	return ""
}

func TestRenderPetitionProducesValidArchive(t *testing.T) {
	office := &models.OfficeSettings{Name: "Silva & Associados", OABNumber: "SP 123.456"}
	text := "## DOS FATOS\nO autor celebrou contrato.\n\n1. Primeiro pedido.\n\nTexto corrido justificado."

	data, err := RenderPetition(text, "Petição Inicial", "Cível", "Ação de Cobrança", office)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, file := range reader.File {
		names[file.Name] = true
	}
	for _, part := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/document.xml",
		"word/_rels/document.xml.rels",
		"word/styles.xml",
		"word/header1.xml",
		"word/footer1.xml",
	} {
		assert.True(t, names[part], "missing part %s", part)
	}

	body := readZipPart(t, data, "word/document.xml")
	assert.Contains(t, body, "Petição Inicial")
	assert.Contains(t, body, "DOS FATOS")
	assert.Contains(t, body, "Cível - Ação de Cobrança")
	assert.Contains(t, body, "1. Primeiro pedido.")

	header := readZipPart(t, data, "word/header1.xml")
	assert.Contains(t, header, "Silva &amp; Associados")
	assert.Contains(t, header, "OAB: SP 123.456")

	footer := readZipPart(t, data, "word/footer1.xml")
	assert.Contains(t, footer, "Página ")
	assert.Contains(t, footer, "PAGE")
	assert.Contains(t, footer, "NUMPAGES")
}

func TestRenderPetitionDefaultLetterhead(t *testing.T) {
	data, err := RenderPetition("texto", "Título", "Cível", "Petição", nil)
	require.NoError(t, err)

	header := readZipPart(t, data, "word/header1.xml")
	assert.Contains(t, header, "LEXDESK")
	assert.NotContains(t, header, "OAB:")
}

func TestRenderJudgeReport(t *testing.T) {
	report := &models.JudgeReport{
		ProbabilidadeExito:         models.ProbabilityHigh,
		JustificativaProbabilidade: "Provas documentais robustas.",
		PontosFortes:               []string{"Contrato assinado"},
		PontosFracos:               []string{"Falta perícia"},
		LacunasProbatorias:         []string{"Sem testemunhas"},
		Riscos:                     []string{"Prescrição parcial"},
		Sugestoes: []models.Suggestion{
			{Titulo: "Juntar laudo", Texto: "Requerer prova pericial contábil."},
		},
	}

	data, err := RenderJudgeReport(report, nil)
	require.NoError(t, err)

	body := readZipPart(t, data, "word/document.xml")
	assert.Contains(t, body, "RELATÓRIO DE ANÁLISE CRÍTICA")
	assert.Contains(t, body, "Probabilidade de Êxito: ")
	assert.Contains(t, body, models.ProbabilityHigh)
	assert.Contains(t, body, "10B981")
	assert.Contains(t, body, "1. PONTOS FORTES")
	assert.Contains(t, body, "• Contrato assinado")
	assert.Contains(t, body, "Juntar laudo")
	assert.Contains(t, body, "Requerer prova pericial contábil.")
}

func TestProbabilityColor(t *testing.T) {
	assert.Equal(t, "10B981", probabilityColor(models.ProbabilityHigh))
	assert.Equal(t, "F59E0B", probabilityColor(models.ProbabilityMedium))
	assert.Equal(t, "EF4444", probabilityColor(models.ProbabilityLow))
	assert.Equal(t, "EF4444", probabilityColor("desconhecida"))
}
