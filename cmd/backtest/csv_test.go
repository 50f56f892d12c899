package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/costsim/pkg/errors"
)

type CSVTestSuite struct {
	suite.Suite
}

func TestCSVSuite(t *testing.T) {
	suite.Run(t, new(CSVTestSuite))
}

func (suite *CSVTestSuite) writeCSV(content string) string {
	path := filepath.Join(suite.T().TempDir(), "data.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *CSVTestSuite) TestLoadBars() {
	path := suite.writeCSV(`date,open,high,low,close,volume,volatility,liquidity
2024-01-02,100,102,99,101,50000,1.1,0.9
2024-01-03,101,103,100,102,60000,1.2,0.8
`)

	bars, err := loadBars(path)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)

	suite.Equal(2024, bars[0].Date.Year())
	suite.InDelta(101.0, bars[0].Close, 1e-9)
	suite.InDelta(50000.0, bars[0].Volume, 1e-9)
	suite.Require().True(bars[0].Volatility.IsSome())
	suite.InDelta(1.1, bars[0].Volatility.Unwrap(), 1e-9)
	suite.True(bars[0].VolumeRatio.IsNone())
}

func (suite *CSVTestSuite) TestLoadBarsColumnOrderIndependent() {
	path := suite.writeCSV(`close,volume,date,open,high,low
101,50000,2024-01-02,100,102,99
`)

	bars, err := loadBars(path)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 1)
	suite.InDelta(101.0, bars[0].Close, 1e-9)
}

func (suite *CSVTestSuite) TestLoadBarsErrors() {
	tests := []struct {
		name     string
		content  string
		wantCode errors.ErrorCode
	}{
		{
			name:     "missing required column",
			content:  "date,open,high,low,close\n2024-01-02,100,102,99,101\n",
			wantCode: errors.ErrCodeDataReadFailed,
		},
		{
			name:     "unparseable date",
			content:  "date,open,high,low,close,volume\nyesterday,100,102,99,101,50000\n",
			wantCode: errors.ErrCodeMissingDate,
		},
		{
			name:     "unparseable number",
			content:  "date,open,high,low,close,volume\n2024-01-02,100,102,99,abc,50000\n",
			wantCode: errors.ErrCodeDataReadFailed,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := loadBars(suite.writeCSV(tc.content))
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tc.wantCode))
		})
	}
}

func (suite *CSVTestSuite) TestLoadBarsMissingFile() {
	_, err := loadBars(filepath.Join(suite.T().TempDir(), "absent.csv"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataReadFailed))
}
