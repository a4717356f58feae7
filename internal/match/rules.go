package match

import (
	"strings"

	"github.com/altafino/report-courier/internal/models"
	"github.com/altafino/report-courier/internal/types"
)

// Default rule literals for the observed deployment. All of them can
// be overridden in the matching section of the configuration.
const (
	defaultTicketsKeyword  = "chamado"
	defaultContractService = "Relatório Contratual"
)

var (
	defaultContractNameTokens  = []string{"caixa", "economica"}
	defaultContractAgencyCodes = []string{"cef", "caixa"}
)

// genericCodePlaceholder marks recipients without a usable agency
// code; matching falls back to the recipient name for those.
const genericCodePlaceholder = "geral"

// compact removes spaces from a strict-normalized string so that
// "justica federal" still matches "relatorio_justica_federal.pdf",
// where the separators were dropped by normalization.
func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// Rules evaluates the deterministic filename matching rules. All
// literals are normalized once at construction.
type Rules struct {
	ticketsKeyword     string
	contractNameTokens []string
	contractCodes      map[string]struct{}
	contractFileTokens []string
	contractService    string
}

// NewRules builds a rule evaluator from the matching configuration.
func NewRules(cfg *types.Config) *Rules {
	m := cfg.Matching

	ticketsKeyword := m.TicketsKeyword
	if ticketsKeyword == "" {
		ticketsKeyword = defaultTicketsKeyword
	}

	nameTokens := m.Contract.NameTokens
	if len(nameTokens) == 0 {
		nameTokens = defaultContractNameTokens
	}

	agencyCodes := m.Contract.AgencyCodes
	if len(agencyCodes) == 0 {
		agencyCodes = defaultContractAgencyCodes
	}

	service := m.Contract.ServiceLabel
	if service == "" {
		service = defaultContractService
	}

	r := &Rules{
		ticketsKeyword:  NormalizeStrict(ticketsKeyword),
		contractService: service,
		contractCodes:   make(map[string]struct{}, len(agencyCodes)),
	}
	for _, t := range nameTokens {
		r.contractNameTokens = append(r.contractNameTokens, NormalizeStrict(t))
	}
	for _, c := range agencyCodes {
		r.contractCodes[NormalizeStrict(c)] = struct{}{}
	}
	for _, t := range m.Contract.FileTokens {
		r.contractFileTokens = append(r.contractFileTokens, NormalizeStrict(t))
	}
	return r
}

// ContractService returns the pseudo-service label used for
// contract-variant matches.
func (r *Rules) ContractService() string {
	return r.contractService
}

// IsContractVariant reports whether the recipient is matched by the
// fixed-format contractual report rule instead of the general service
// taxonomy.
func (r *Rules) IsContractVariant(rec models.Recipient) bool {
	if _, ok := r.contractCodes[NormalizeStrict(rec.Sigla)]; ok {
		return true
	}
	if len(r.contractNameTokens) == 0 {
		return false
	}
	name := NormalizeStrict(rec.Name)
	for _, tok := range r.contractNameTokens {
		if !strings.Contains(name, tok) {
			return false
		}
	}
	return true
}

// FindContractFile returns the first file containing every configured
// contract token. With no tokens configured the rule never matches.
func (r *Rules) FindContractFile(files []models.FileEntry) (models.FileEntry, bool) {
	if len(r.contractFileTokens) == 0 {
		return models.FileEntry{}, false
	}
	for _, f := range files {
		name := compact(NormalizeStrict(f.Name))
		ok := true
		for _, tok := range r.contractFileTokens {
			if !strings.Contains(name, compact(tok)) {
				ok = false
				break
			}
		}
		if ok {
			return f, true
		}
	}
	return models.FileEntry{}, false
}

// FindServiceFile returns the first file satisfying the general rule
// for the given recipient and service, in inventory order.
//
// The filename must contain the normalized agency code and the
// normalized service label. Recipients whose code is empty, too short
// to be meaningful or the literal "geral" placeholder are matched by
// their normalized name instead. The recurring-tickets service only
// requires the generic tickets keyword, because historical filenames
// abbreviate that service inconsistently.
func (r *Rules) FindServiceFile(rec models.Recipient, service string, files []models.FileEntry) (models.FileEntry, bool) {
	ident := NormalizeStrict(rec.Sigla)
	if len(strings.TrimSpace(ident)) <= 2 || ident == genericCodePlaceholder {
		ident = NormalizeStrict(rec.Name)
	}
	ident = compact(ident)
	if ident == "" {
		return models.FileEntry{}, false
	}

	needle := NormalizeStrict(service)
	if strings.Contains(needle, r.ticketsKeyword) {
		needle = r.ticketsKeyword
	}
	needle = compact(needle)

	for _, f := range files {
		name := compact(NormalizeStrict(f.Name))
		if strings.Contains(name, ident) && strings.Contains(name, needle) {
			return f, true
		}
	}
	return models.FileEntry{}, false
}
