package fallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := New()
	require.NoError(t, err)
	return g
}

func TestLoadRules(t *testing.T) {
	pack, err := LoadRules()
	require.NoError(t, err)
	require.Len(t, pack.Categories, 5)

	slugs := make([]string, 0, len(pack.Categories))
	for _, c := range pack.Categories {
		slugs = append(slugs, c.Slug)
	}
	assert.Equal(t, []string{"invoicing", "reporting", "email", "backup", "sales"}, slugs)

	// Every embedded flow diagram holds its structural invariants.
	for _, c := range pack.Categories {
		if c.Template.FlowExample != nil {
			assert.NoError(t, c.Template.FlowExample.Validate(), c.Slug)
		}
	}
}

func TestGenerate_InvoicingDescription(t *testing.T) {
	g := newTestGenerator(t)

	records := g.Generate("Preciso automatizar emissão de nota fiscal")
	require.NotEmpty(t, records)

	first := records[0]
	assert.Equal(t, "Automação Completa de Emissão de Nota Fiscal", first.Title)
	assert.Equal(t, model.PriorityHigh, first.Priority)
	assert.Len(t, first.Tools, 4)
	assert.Equal(t, "NFe.io", first.Tools[0].Name)
	require.NotNil(t, first.FlowExample)
	assert.Len(t, first.FlowExample.FlowData.Nodes, 11)
	assert.Equal(t, model.ProvenanceFallback, first.Provenance)
}

func TestGenerate_UnrelatedDescription_Generic(t *testing.T) {
	g := newTestGenerator(t)

	records := g.Generate("xyzzy qwerty plugh")
	require.Len(t, records, 1)
	assert.Equal(t, "Automação Inteligente de Processo", records[0].Title)
	assert.Equal(t, model.PriorityMedium, records[0].Priority)
	assert.Nil(t, records[0].FlowExample)
	assert.Len(t, records[0].Tools, 5)
}

func TestGenerate_NonExclusiveMatching(t *testing.T) {
	g := newTestGenerator(t)

	// "vendas" hits invoicing and sales; "relatório" hits reporting.
	records := g.Generate("Relatório semanal de vendas")
	titles := make([]string, 0, len(records))
	for _, r := range records {
		titles = append(titles, r.Title)
	}
	assert.Contains(t, titles, "Automação Completa de Emissão de Nota Fiscal")
	assert.Contains(t, titles, "Automação de Relatórios Inteligente")
	assert.Contains(t, titles, "Automação de Processos de Vendas")
}

func TestGenerate_OrdinalIDs(t *testing.T) {
	g := newTestGenerator(t)

	records := g.Generate("backup de dados com relatório por email para o cliente")
	require.True(t, len(records) >= 2)
	for i, r := range records {
		assert.Equal(t, i+1, r.ID)
	}
}

func TestGenerate_DiacriticInsensitive(t *testing.T) {
	g := newTestGenerator(t)

	withAccent := g.Generate("gerar relatório mensal")
	withoutAccent := g.Generate("gerar relatorio mensal")
	require.NotEmpty(t, withAccent)
	require.NotEmpty(t, withoutAccent)
	assert.Equal(t, withAccent[0].Title, withoutAccent[0].Title)
}

func TestGenerate_CaseInsensitive(t *testing.T) {
	g := newTestGenerator(t)

	records := g.Generate("PLANILHA EXCEL")
	require.NotEmpty(t, records)
	assert.Equal(t, "Automação de Relatórios Inteligente", records[0].Title)
}

func TestGenerate_DescriptionExcerpt(t *testing.T) {
	g := newTestGenerator(t)

	long := strings.Repeat("nota fiscal ", 20)
	records := g.Generate(long)
	require.NotEmpty(t, records)

	desc := records[0].Description
	assert.Contains(t, desc, `Baseado em: "`)
	assert.Contains(t, desc, `..."`)
	// Only the first 80 characters are quoted.
	start := strings.Index(desc, `Baseado em: "`) + len(`Baseado em: "`)
	end := strings.Index(desc, `..."`)
	assert.Equal(t, 80, len([]rune(desc[start:end])))
}

func TestGenerate_NeverEmpty(t *testing.T) {
	g := newTestGenerator(t)

	for _, desc := range []string{"", " ", "????", "automatizar processo interno"} {
		records := g.Generate(desc)
		assert.NotEmpty(t, records, desc)
	}
}
