package units

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	dErrors "amlgate/pkg/domain-errors"
)

type UnitsSuite struct {
	suite.Suite
	table     *Table
	converter *Converter
}

func (s *UnitsSuite) SetupTest() {
	table, err := NewTable([]UnitValue{
		{EffectiveFrom: date(2024, time.January, 1), Value: decimal.NewFromInt(64_000)},
		{EffectiveFrom: date(2024, time.July, 1), Value: decimal.NewFromInt(65_500)},
		{EffectiveFrom: date(2025, time.January, 1), Value: decimal.NewFromInt(67_000)},
	})
	s.Require().NoError(err)
	s.table = table
	s.converter = NewConverter(table, "CLP", map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(950),
	})
}

func TestUnitsSuite(t *testing.T) {
	suite.Run(t, new(UnitsSuite))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *UnitsSuite) TestValueOn() {
	s.Run("resolves the version in force on the date", func() {
		v, err := s.table.ValueOn(date(2024, time.March, 15))
		s.Require().NoError(err)
		s.True(v.Equal(decimal.NewFromInt(64_000)))
	})

	s.Run("effective date itself uses the new value", func() {
		v, err := s.table.ValueOn(date(2024, time.July, 1))
		s.Require().NoError(err)
		s.True(v.Equal(decimal.NewFromInt(65_500)))
	})

	s.Run("mid-day timestamps resolve by calendar date", func() {
		v, err := s.table.ValueOn(time.Date(2024, time.July, 1, 23, 45, 0, 0, time.UTC))
		s.Require().NoError(err)
		s.True(v.Equal(decimal.NewFromInt(65_500)))
	})

	s.Run("date before any coverage is an error, never a default", func() {
		_, err := s.table.ValueOn(date(2023, time.December, 31))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *UnitsSuite) TestConversion() {
	s.Run("to_units divides by the unit value", func() {
		got, err := s.converter.ToUnits(decimal.NewFromInt(640_000), "CLP", date(2024, time.February, 1))
		s.Require().NoError(err)
		s.True(got.Equal(decimal.NewFromInt(10)), "got %s", got)
	})

	s.Run("foreign currency converts through the rate first", func() {
		// 100 USD at 950 = 95,000 CLP; at unit 64,000 that is 1.484375.
		got, err := s.converter.ToUnits(decimal.NewFromInt(100), "USD", date(2024, time.February, 1))
		s.Require().NoError(err)
		s.True(got.Equal(decimal.RequireFromString("1.484375")), "got %s", got)
	})

	s.Run("round trip stays within tolerance", func() {
		amount := decimal.RequireFromString("1234567.89")
		at := date(2024, time.August, 10)
		u, err := s.converter.ToUnits(amount, "CLP", at)
		s.Require().NoError(err)
		back, err := s.converter.FromUnits(u, at)
		s.Require().NoError(err)

		diff := back.Sub(amount).Abs()
		s.True(diff.LessThan(decimal.RequireFromString("0.0001")), "diff %s", diff)
	})

	s.Run("unknown currency is rejected", func() {
		_, err := s.converter.ToUnits(decimal.NewFromInt(1), "XXX", date(2024, time.February, 1))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("transaction date picks the historical unit value", func() {
		old, err := s.converter.ToUnits(decimal.NewFromInt(64_000), "CLP", date(2024, time.June, 30))
		s.Require().NoError(err)
		recent, err := s.converter.ToUnits(decimal.NewFromInt(64_000), "CLP", date(2024, time.July, 2))
		s.Require().NoError(err)
		s.True(old.GreaterThan(recent))
	})
}

func (s *UnitsSuite) TestNewTable() {
	s.Run("rejects non-positive values", func() {
		_, err := NewTable([]UnitValue{
			{EffectiveFrom: date(2024, time.January, 1), Value: decimal.Zero},
		})
		s.Require().Error(err)
	})

	s.Run("rejects an empty table", func() {
		_, err := NewTable(nil)
		s.Require().Error(err)
	})
}
