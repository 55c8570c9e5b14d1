package categorize

import (
	"context"

	"github.com/dvloznov/swiss-bookkeeping/internal/classifier"
	"github.com/dvloznov/swiss-bookkeeping/internal/domain"
	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
)

const (
	fallbackCategory = "Miscellaneous"
	fallbackIncome   = "4000"
	fallbackExpense  = "6000"
	fallbackNotes    = "Default categorization - manual review required"
)

// Outcome is reported to an Observer once per transaction.
type Outcome struct {
	Transaction domain.ExtractedTransaction
	Prompt      string
	Result      *classifier.Result // nil when Err is set
	Err         error
}

// Observer receives every classifier outcome, in input order.
type Observer func(Outcome)

// Categorizer enriches extracted transactions with accounting metadata.
type Categorizer struct {
	classifier classifier.Classifier
	rules      []Rule
	observer   Observer
}

type Option func(*Categorizer)

// WithRules replaces the default Swiss rule pipeline.
func WithRules(rules ...Rule) Option {
	return func(c *Categorizer) { c.rules = rules }
}

// WithObserver registers a hook called after each classifier invocation.
func WithObserver(o Observer) Option {
	return func(c *Categorizer) { c.observer = o }
}

func New(cl classifier.Classifier, opts ...Option) *Categorizer {
	c := &Categorizer{classifier: cl, rules: DefaultRules()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categorize returns one record per input transaction, in input order. Classifier
// failures are logged and replaced by Fallback; the batch is never aborted.
func (c *Categorizer) Categorize(ctx context.Context, txs []domain.ExtractedTransaction, chart *domain.ChartOfAccounts) []domain.CategorizedTransaction {
	log := logger.FromContext(ctx)

	out := make([]domain.CategorizedTransaction, 0, len(txs))
	fallbacks := 0
	for i, tx := range txs {
		rec, err := c.categorizeOne(ctx, tx, chart)
		if err != nil {
			fallbacks++
			log.Warn().
				Err(err).
				Int("index", i).
				Str("transaction_id", tx.CompositeID()).
				Msg("classification failed, using fallback")
			rec = Fallback(tx)
		}
		out = append(out, rec)
	}

	log.Info().
		Int("transactions", len(txs)).
		Int("fallbacks", fallbacks).
		Msg("categorization finished")

	return out
}

func (c *Categorizer) categorizeOne(ctx context.Context, tx domain.ExtractedTransaction, chart *domain.ChartOfAccounts) (domain.CategorizedTransaction, error) {
	prompt := BuildPrompt(tx, chart)
	res, err := c.classifier.Ask(ctx, prompt)
	switch {
	case err != nil:
	case res == nil:
		err = classifier.ErrMalformedResult
	default:
		err = res.Validate()
	}
	if c.observer != nil {
		c.observer(Outcome{Transaction: tx, Prompt: prompt, Result: res, Err: err})
	}
	if err != nil {
		return domain.CategorizedTransaction{}, err
	}
	return ApplyRules(c.rules, fromResult(tx, res)), nil
}

func fromResult(tx domain.ExtractedTransaction, res *classifier.Result) domain.CategorizedTransaction {
	rec := domain.CategorizedTransaction{
		ExtractedTransaction: tx,
		SuggestedCategory:    res.Category,
		AccountNumber:        res.AccountNumber,
		Confidence:           res.Confidence,
		SwissGAAPCode:        res.SwissGAAPCode,
		VATCode:              res.VATCode,
		Notes:                res.Notes,
		ProcessingRules:      []string{},
	}
	if res.VATRate != nil {
		rec.VATRate = domain.Float(*res.VATRate)
	}
	return rec
}

// Fallback is the deterministic categorization used when the classifier fails.
func Fallback(tx domain.ExtractedTransaction) domain.CategorizedTransaction {
	account := fallbackExpense
	if tx.IsIncome {
		account = fallbackIncome
	}
	return domain.CategorizedTransaction{
		ExtractedTransaction: tx,
		SuggestedCategory:    fallbackCategory,
		AccountNumber:        account,
		Confidence:           0.1,
		SwissGAAPCode:        "Other",
		VATCode:              string(domain.VATStandard),
		VATRate:              domain.Float(domain.VATStandard.Rate()),
		Notes:                fallbackNotes,
		ProcessingRules:      []string{RuleDefault},
	}
}
