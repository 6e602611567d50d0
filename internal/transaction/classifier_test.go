package transaction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"amlgate/internal/reference"
	"amlgate/pkg/domain"
)

type ClassifierSuite struct {
	suite.Suite
	classifier Classifier
	rules      reference.ThresholdVersion
}

func (s *ClassifierSuite) SetupTest() {
	s.classifier = DefaultClassifier()
	s.rules = reference.ThresholdVersion{
		ReportThresholdUnits: decimal.NewFromInt(450),
		MaxCashUnits:         decimal.NewFromInt(120),
	}
}

func TestClassifierSuite(t *testing.T) {
	suite.Run(t, new(ClassifierSuite))
}

func (s *ClassifierSuite) tx(units int64, method PaymentMethod, at time.Time) Transaction {
	return Transaction{
		ID:          domain.NewTransactionID(),
		ClientID:    domain.ClientID{},
		Activity:    "casa_de_cambio",
		Method:      method,
		AmountUnits: decimal.NewFromInt(units),
		OccurredAt:  at,
	}
}

func (s *ClassifierSuite) TestAccumulation() {
	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	s.Run("below threshold with empty window is normal", func() {
		out := s.classifier.Classify(s.tx(100, MethodTransfer, at), nil, s.rules, "Art. 3")
		s.Equal(ClassNormal, out.Classification)
		s.Equal(ObligationNone, out.Obligation)
		s.Empty(out.Alerts)
		s.True(out.AccumulatedUnits.Equal(decimal.NewFromInt(100)))
	})

	s.Run("window accumulation crossing the threshold is relevant", func() {
		window := []Transaction{
			s.tx(200, MethodTransfer, at.AddDate(0, -3, 0)),
			s.tx(200, MethodTransfer, at.AddDate(0, -1, 0)),
		}
		out := s.classifier.Classify(s.tx(100, MethodTransfer, at), window, s.rules, "Art. 3, Ley 19.913")
		s.Equal(ClassRelevant, out.Classification)
		s.Equal(ObligationPeriodicReport, out.Obligation)
		s.True(out.AccumulatedUnits.Equal(decimal.NewFromInt(500)))

		s.Require().Len(out.Alerts, 1)
		s.Equal(AlertThresholdAccumulation, out.Alerts[0].Code)
		s.Equal("Art. 3, Ley 19.913", out.Alerts[0].LegalBasis)
	})

	s.Run("exactly at the threshold reports", func() {
		window := []Transaction{s.tx(350, MethodTransfer, at.AddDate(0, -2, 0))}
		out := s.classifier.Classify(s.tx(100, MethodTransfer, at), window, s.rules, "Art. 3")
		s.Equal(ClassRelevant, out.Classification)
	})
}

func (s *ClassifierSuite) TestCashCeiling() {
	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	s.Run("cash over the ceiling is concerning with a 24h obligation", func() {
		out := s.classifier.Classify(s.tx(150, MethodCash, at), nil, s.rules, "Art. 3")
		s.Equal(ClassConcerning, out.Classification)
		s.Equal(ObligationReport24h, out.Obligation)

		s.Require().Len(out.Alerts, 1)
		s.Equal(AlertCashOverLimit, out.Alerts[0].Code)
	})

	s.Run("cash at the ceiling is allowed", func() {
		out := s.classifier.Classify(s.tx(120, MethodCash, at), nil, s.rules, "Art. 3")
		s.Equal(ClassNormal, out.Classification)
	})

	s.Run("the same amount by transfer is not a cash breach", func() {
		out := s.classifier.Classify(s.tx(150, MethodTransfer, at), nil, s.rules, "Art. 3")
		s.Equal(ClassNormal, out.Classification)
	})

	s.Run("concerning overrides a simultaneous accumulation hit", func() {
		window := []Transaction{s.tx(400, MethodTransfer, at.AddDate(0, -1, 0))}
		out := s.classifier.Classify(s.tx(150, MethodCash, at), window, s.rules, "Art. 3")
		s.Equal(ClassConcerning, out.Classification)
		s.Equal(ObligationReport24h, out.Obligation)
		// Both findings stay visible.
		s.Len(out.Alerts, 2)
	})
}

func (s *ClassifierSuite) TestStructuring() {
	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	s.Run("three near-threshold transactions in a week escalate", func() {
		// Floor is 270 (60% of 450); each of these sits between the floor
		// and the threshold, and together they pass 450.
		window := []Transaction{
			s.tx(300, MethodTransfer, at.AddDate(0, 0, -5)),
			s.tx(320, MethodTransfer, at.AddDate(0, 0, -2)),
		}
		out := s.classifier.Classify(s.tx(310, MethodTransfer, at), window, s.rules, "Art. 3")
		s.Equal(ClassConcerning, out.Classification)
		s.Equal(ObligationReport24h, out.Obligation)

		codes := alertCodes(out.Alerts)
		s.Contains(codes, AlertStructuring)
	})

	s.Run("small transactions below the floor are not a pattern", func() {
		window := []Transaction{
			s.tx(100, MethodTransfer, at.AddDate(0, 0, -5)),
			s.tx(100, MethodTransfer, at.AddDate(0, 0, -2)),
		}
		out := s.classifier.Classify(s.tx(100, MethodTransfer, at), window, s.rules, "Art. 3")
		codes := alertCodes(out.Alerts)
		s.NotContains(codes, AlertStructuring)
	})

	s.Run("near-threshold transactions outside the week do not count", func() {
		window := []Transaction{
			s.tx(300, MethodTransfer, at.AddDate(0, 0, -20)),
			s.tx(320, MethodTransfer, at.AddDate(0, 0, -15)),
		}
		out := s.classifier.Classify(s.tx(310, MethodTransfer, at), window, s.rules, "Art. 3")
		codes := alertCodes(out.Alerts)
		s.NotContains(codes, AlertStructuring)
	})

	s.Run("a single transaction at the threshold is reporting, not structuring", func() {
		out := s.classifier.Classify(s.tx(450, MethodTransfer, at), nil, s.rules, "Art. 3")
		s.Equal(ClassRelevant, out.Classification)
		codes := alertCodes(out.Alerts)
		s.NotContains(codes, AlertStructuring)
	})
}

func (s *ClassifierSuite) TestDeterminism() {
	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	window := []Transaction{
		s.tx(300, MethodTransfer, at.AddDate(0, 0, -5)),
		s.tx(320, MethodCash, at.AddDate(0, 0, -2)),
	}
	tx := s.tx(310, MethodCash, at)

	first := s.classifier.Classify(tx, window, s.rules, "Art. 3")
	for i := 0; i < 10; i++ {
		again := s.classifier.Classify(tx, window, s.rules, "Art. 3")
		s.Equal(first.Classification, again.Classification)
		s.Equal(first.Obligation, again.Obligation)
		s.Equal(first.Alerts, again.Alerts)
	}
}

func alertCodes(alerts []Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Code)
	}
	return out
}
