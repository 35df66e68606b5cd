package model

import (
	"fmt"
	"strings"
)

// ProjectStatus is the lifecycle state of a chantier.
type ProjectStatus string

const (
	ProjectInProgress ProjectStatus = "En cours"
	ProjectCompleted  ProjectStatus = "Terminé"
	ProjectSuspended  ProjectStatus = "Suspendu"
)

// ProjectStatuses lists every project status in display order.
var ProjectStatuses = []ProjectStatus{ProjectInProgress, ProjectCompleted, ProjectSuspended}

func (s ProjectStatus) Valid() bool {
	return s == ProjectInProgress || s == ProjectCompleted || s == ProjectSuspended
}

// QuoteStatus is the lifecycle state of a devis.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "Brouillon"
	QuoteSent     QuoteStatus = "Envoyé"
	QuoteAccepted QuoteStatus = "Accepté"
	QuoteRejected QuoteStatus = "Refusé"
)

var QuoteStatuses = []QuoteStatus{QuoteDraft, QuoteSent, QuoteAccepted, QuoteRejected}

func (s QuoteStatus) Valid() bool {
	return s == QuoteDraft || s == QuoteSent || s == QuoteAccepted || s == QuoteRejected
}

// PaymentMethod is how the client paid.
type PaymentMethod string

const (
	PaymentTransfer    PaymentMethod = "Virement"
	PaymentCheck       PaymentMethod = "Chèque"
	PaymentCash        PaymentMethod = "Espèces"
	PaymentCard        PaymentMethod = "CB"
	PaymentMobileMoney PaymentMethod = "Mobile Money"
)

var PaymentMethods = []PaymentMethod{PaymentTransfer, PaymentCheck, PaymentCash, PaymentCard, PaymentMobileMoney}

func (m PaymentMethod) Valid() bool {
	for _, v := range PaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

// ExpenseType categorizes money spent on a chantier.
type ExpenseType string

const (
	ExpenseMaterials ExpenseType = "matériaux"
	ExpenseLabor     ExpenseType = "main-d’œuvre"
	ExpenseTransport ExpenseType = "transport"
	ExpenseOther     ExpenseType = "autre"
)

var ExpenseTypes = []ExpenseType{ExpenseMaterials, ExpenseLabor, ExpenseTransport, ExpenseOther}

func (t ExpenseType) Valid() bool {
	return t == ExpenseMaterials || t == ExpenseLabor || t == ExpenseTransport || t == ExpenseOther
}

// Command-line spellings, keyed by a folded form (see fold).
var (
	projectStatusAliases = map[string]ProjectStatus{
		"encours": ProjectInProgress, "inprogress": ProjectInProgress, "active": ProjectInProgress,
		"termine": ProjectCompleted, "completed": ProjectCompleted, "done": ProjectCompleted,
		"suspendu": ProjectSuspended, "suspended": ProjectSuspended,
	}
	quoteStatusAliases = map[string]QuoteStatus{
		"brouillon": QuoteDraft, "draft": QuoteDraft,
		"envoye": QuoteSent, "sent": QuoteSent,
		"accepte": QuoteAccepted, "accepted": QuoteAccepted,
		"refuse": QuoteRejected, "rejected": QuoteRejected,
	}
	paymentMethodAliases = map[string]PaymentMethod{
		"virement": PaymentTransfer, "transfer": PaymentTransfer, "banktransfer": PaymentTransfer,
		"cheque": PaymentCheck, "check": PaymentCheck,
		"especes": PaymentCash, "cash": PaymentCash,
		"cb": PaymentCard, "card": PaymentCard,
		"mobilemoney": PaymentMobileMoney, "mobile": PaymentMobileMoney,
	}
	expenseTypeAliases = map[string]ExpenseType{
		"materiaux": ExpenseMaterials, "materials": ExpenseMaterials,
		"maindoeuvre": ExpenseLabor, "labor": ExpenseLabor, "labour": ExpenseLabor,
		"transport": ExpenseTransport,
		"autre": ExpenseOther, "other": ExpenseOther,
	}
)

// fold lowercases s, strips French accents and drops separators.
func fold(s string) string {
	r := strings.NewReplacer(
		"é", "e", "è", "e", "ê", "e", "É", "e", "à", "a", "ç", "c", "œ", "oe",
		" ", "", "-", "", "_", "", "'", "", "’", "",
	)
	return r.Replace(strings.ToLower(strings.TrimSpace(s)))
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	if v, ok := projectStatusAliases[fold(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: project status %q", ErrInvalid, s)
}

func ParseQuoteStatus(s string) (QuoteStatus, error) {
	if v, ok := quoteStatusAliases[fold(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: quote status %q", ErrInvalid, s)
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if v, ok := paymentMethodAliases[fold(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: payment method %q", ErrInvalid, s)
}

func ParseExpenseType(s string) (ExpenseType, error) {
	if v, ok := expenseTypeAliases[fold(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: expense type %q", ErrInvalid, s)
}
