package docx

import (
	"regexp"
	"strings"

	"lexdesk-backend/models"
)

const defaultOfficeName = "LEXDESK"

var numberedItemRe = regexp.MustCompile(`^\d+\.`)

func officeName(office *models.OfficeSettings) string {
	if office != nil && office.Name != "" {
		return office.Name
	}
	return defaultOfficeName
}

// letterhead is the right-aligned office line shown on every page.
func letterhead(office *models.OfficeSettings, suffix string) []paragraph {
	runs := []run{{text: officeName(office), bold: true, size: 18, color: "6366F1"}}
	if office != nil && office.OABNumber != "" {
		runs = append(runs, run{text: "   |   OAB: " + office.OABNumber, size: 18, color: "666666"})
	}
	runs = append(runs, run{text: "   |   " + suffix, size: 18, color: "666666"})
	return []paragraph{{align: "right", runs: runs}}
}

// pageFooter renders "Página X de Y" using live page fields.
func pageFooter() []paragraph {
	return []paragraph{{
		align: "center",
		runs: []run{
			{text: "Página ", size: 18, color: "666666"},
			{field: "PAGE", size: 18, color: "666666"},
			{text: " de ", size: 18, color: "666666"},
			{field: "NUMPAGES", size: 18, color: "666666"},
		},
	}}
}

// RenderPetition converts generated petition text into a formatted docx.
// Heading markers become bordered section headings, numbered items are
// indented, and everything else is justified body text with 1.5 spacing.
func RenderPetition(text, title, area, petitionType string, office *models.OfficeSettings) ([]byte, error) {
	doc := &document{
		header: letterhead(office, petitionType),
		footer: pageFooter(),
	}

	doc.add(paragraph{style: "Title", align: "center", after: 200, runs: []run{{text: title}}})
	doc.add(paragraph{align: "center", after: 400, runs: []run{
		{text: area + " - " + petitionType, size: 22, color: "666666"},
	}})

	for _, section := range ParseSections(text) {
		if section.Heading != "" {
			doc.add(paragraph{
				style:        "Heading1",
				before:       400,
				after:        200,
				bottomBorder: true,
				runs:         []run{{text: strings.ToUpper(section.Heading)}},
			})
		}
		for _, para := range strings.Split(section.Content, "\n\n") {
			trimmed := strings.TrimSpace(para)
			if trimmed == "" {
				continue
			}
			if numberedItemRe.MatchString(trimmed) {
				doc.add(paragraph{indent: 720, after: 120, runs: []run{{text: trimmed, size: 24}}})
			} else {
				doc.add(paragraph{align: "both", after: 200, line: 360, runs: []run{{text: trimmed, size: 24}}})
			}
		}
	}

	return doc.pack()
}

func probabilityColor(p string) string {
	switch p {
	case models.ProbabilityHigh:
		return "10B981"
	case models.ProbabilityMedium:
		return "F59E0B"
	default:
		return "EF4444"
	}
}

// RenderJudgeReport converts a structured judge report into a formatted docx.
func RenderJudgeReport(report *models.JudgeReport, office *models.OfficeSettings) ([]byte, error) {
	doc := &document{
		header: letterhead(office, "Relatório de Análise"),
		footer: pageFooter(),
	}

	sectionHeader := func(text string) {
		doc.add(paragraph{style: "Heading1", before: 400, after: 200, runs: []run{{text: strings.ToUpper(text)}}})
	}
	bulletItem := func(text string) {
		doc.add(paragraph{indent: 432, after: 120, line: 360, align: "both", runs: []run{{text: "• " + text, size: 24}}})
	}

	doc.add(paragraph{style: "Title", align: "center", after: 100, runs: []run{{text: "RELATÓRIO DE ANÁLISE CRÍTICA"}}})
	doc.add(paragraph{align: "center", after: 200, runs: []run{
		{text: "Parecer do Agente Julgador - " + officeName(office), size: 20, color: "666666"},
	}})
	doc.add(paragraph{after: 100, runs: []run{
		{text: "Probabilidade de Êxito: ", bold: true, size: 26},
		{text: report.ProbabilidadeExito, bold: true, size: 26, color: probabilityColor(report.ProbabilidadeExito)},
	}})
	doc.add(paragraph{after: 400, line: 360, align: "both", runs: []run{
		{text: report.JustificativaProbabilidade, size: 22, color: "555555"},
	}})

	sectionHeader("1. Pontos Fortes")
	for _, item := range report.PontosFortes {
		bulletItem(item)
	}
	sectionHeader("2. Pontos Fracos")
	for _, item := range report.PontosFracos {
		bulletItem(item)
	}
	sectionHeader("3. Lacunas Probatórias")
	for _, item := range report.LacunasProbatorias {
		bulletItem(item)
	}
	sectionHeader("4. Riscos de Insucesso")
	for _, item := range report.Riscos {
		bulletItem(item)
	}
	sectionHeader("5. Sugestões de Melhoria")
	for _, s := range report.Sugestoes {
		doc.add(paragraph{before: 200, after: 100, runs: []run{{text: s.Titulo, bold: true, size: 24}}})
		doc.add(paragraph{indent: 432, after: 200, line: 360, align: "both", runs: []run{
			{text: s.Texto, size: 24, italic: true, color: "334155"},
		}})
	}

	return doc.pack()
}
