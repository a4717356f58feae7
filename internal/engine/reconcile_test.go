package engine

import (
	"testing"

	"github.com/altafino/report-courier/internal/match"
	"github.com/altafino/report-courier/internal/models"
	"github.com/altafino/report-courier/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules(t *testing.T) *match.Rules {
	t.Helper()
	cfg := &types.Config{}
	cfg.Matching.TicketsKeyword = "chamado"
	cfg.Matching.Contract.NameTokens = []string{"caixa", "economica"}
	cfg.Matching.Contract.AgencyCodes = []string{"cef"}
	cfg.Matching.Contract.FileTokens = []string{"simrede", "0373", "2025"}
	cfg.Matching.Contract.ServiceLabel = "Relatório Contratual"
	return match.NewRules(cfg)
}

func inventory(names ...string) []models.FileEntry {
	out := make([]models.FileEntry, 0, len(names))
	for _, n := range names {
		out = append(out, models.FileEntry{Name: n})
	}
	return out
}

func TestReconcilePassSatisfaction(t *testing.T) {
	rules := testRules(t)
	recipients := []models.Recipient{
		{Sigla: "JFAL", Name: "Justiça Federal de Alagoas", Services: []string{"Varonis", "Backup"}},
	}

	files := inventory("relatorio_JFAL_Varonis_2024.pdf")
	next, changed := reconcilePass(rules, recipients, map[string]models.RecipientRuntime{}, files)

	require.Len(t, changed, 1)
	rt := next["jfal"]
	assert.Equal(t, models.StatusPending, rt.Status, "a partially matched recipient stays pending")
	assert.Equal(t, []string{"Backup"}, rt.Result.Missing)
	require.Len(t, rt.Result.Matched, 1)
	assert.Equal(t, "Varonis", rt.Result.Matched[0].Service)

	// The second file completes the set
	files = inventory("relatorio_JFAL_Varonis_2024.pdf", "relatorio_JFAL_Backup_2024.pdf")
	next, changed = reconcilePass(rules, recipients, next, files)

	require.Len(t, changed, 1)
	rt = next["jfal"]
	assert.Equal(t, models.StatusFileFound, rt.Status)
	assert.True(t, rt.Result.Satisfied())
}

func TestReconcilePassIdempotent(t *testing.T) {
	rules := testRules(t)
	recipients := []models.Recipient{
		{Sigla: "JFAL", Name: "Justiça Federal de Alagoas", Services: []string{"Varonis"}},
		{Sigla: "JFPE", Name: "Justiça Federal de Pernambuco", Services: []string{"Backup"}},
	}
	files := inventory("relatorio_JFAL_Varonis_2024.pdf")

	first, changed := reconcilePass(rules, recipients, map[string]models.RecipientRuntime{}, files)
	require.Len(t, changed, 2)

	// Unchanged inventory and registry: structural equality short-circuits
	second, changed := reconcilePass(rules, recipients, first, files)
	assert.Empty(t, changed)
	assert.Equal(t, first, second)
}

func TestReconcilePassUnconfigured(t *testing.T) {
	rules := testRules(t)
	recipients := []models.Recipient{
		{Sigla: "JFAL", Name: "Justiça Federal de Alagoas"},
	}

	next, _ := reconcilePass(rules, recipients, map[string]models.RecipientRuntime{}, inventory(
		"relatorio_JFAL_Varonis_2024.pdf",
	))

	rt := next["jfal"]
	assert.True(t, rt.Result.Unconfigured)
	assert.False(t, rt.Result.Satisfied(), "zero configured services can never satisfy")
	assert.Equal(t, models.StatusPending, rt.Status)
}

func TestReconcilePassContractVariant(t *testing.T) {
	rules := testRules(t)
	recipients := []models.Recipient{
		// No configured services: the contract pseudo-service applies anyway
		{Sigla: "CEF", Name: "Caixa Econômica Federal"},
	}

	next, _ := reconcilePass(rules, recipients, map[string]models.RecipientRuntime{}, inventory(
		"SIMREDE_contrato_0373_2025.pdf",
	))

	rt := next["cef"]
	require.Len(t, rt.Result.Matched, 1)
	assert.Equal(t, "Relatório Contratual", rt.Result.Matched[0].Service)
	assert.True(t, rt.Result.Satisfied())
	assert.Equal(t, models.StatusFileFound, rt.Status)
}

func TestReconcilePassRegressionDiscardsContent(t *testing.T) {
	rules := testRules(t)
	recipients := []models.Recipient{
		{Sigla: "JFAL", Name: "Justiça Federal de Alagoas", Services: []string{"Varonis"}},
	}
	files := inventory("relatorio_JFAL_Varonis_2024.pdf")

	next, _ := reconcilePass(rules, recipients, map[string]models.RecipientRuntime{}, files)
	rt := next["jfal"]
	rt.Status = models.StatusReady
	rt.Content = models.EmailContent{Subject: "s", Body: "b"}
	next["jfal"] = rt

	// The matching file disappears: back to pending, content discarded
	next, changed := reconcilePass(rules, recipients, next, nil)
	require.Len(t, changed, 1)
	rt = next["jfal"]
	assert.Equal(t, models.StatusPending, rt.Status)
	assert.Empty(t, rt.Content.Subject)
	assert.Equal(t, []string{"Varonis"}, rt.Result.Missing)
}

func TestReconcilePassSentIsFrozen(t *testing.T) {
	rules := testRules(t)
	recipients := []models.Recipient{
		{Sigla: "JFAL", Name: "Justiça Federal de Alagoas", Services: []string{"Varonis"}},
	}
	files := inventory("relatorio_JFAL_Varonis_2024.pdf")

	prev, _ := reconcilePass(rules, recipients, map[string]models.RecipientRuntime{}, files)
	rt := prev["jfal"]
	rt.Status = models.StatusSent
	rt.Content = models.EmailContent{Subject: "s", Body: "b"}
	prev["jfal"] = rt

	// Removing the file must not touch a sent recipient
	next, changed := reconcilePass(rules, recipients, prev, nil)
	assert.Empty(t, changed)
	assert.Equal(t, rt, next["jfal"], "sent recipients are frozen until an explicit reset")
}
