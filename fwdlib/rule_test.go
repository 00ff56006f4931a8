package fwdlib_test

import (
	"testing"

	"github.com/portseal/portseal/fwdlib"
	"github.com/stretchr/testify/suite"
)

type RuleTestSuite struct {
	suite.Suite
}

func (suite *RuleTestSuite) valid() fwdlib.Rule {
	return fwdlib.Rule{
		Name:       "ssh",
		LocalAddr:  "0.0.0.0:2222",
		RemoteAddr: "example.com:22",
	}
}

func (suite *RuleTestSuite) TestValid() {
	suite.NoError(suite.valid().Valid())

	rule := suite.valid()
	rule.LocalAddr = "[::1]:2222"
	suite.NoError(rule.Valid())
}

func (suite *RuleTestSuite) TestLocalPortZero() {
	rule := suite.valid()
	rule.LocalAddr = "127.0.0.1:0"
	suite.NoError(rule.Valid())
	suite.NoError(fwdlib.ValidateRules([]fwdlib.Rule{rule}))
}

func (suite *RuleTestSuite) TestInvalid() {
	testData := map[string]func(*fwdlib.Rule){
		"empty name":        func(r *fwdlib.Rule) { r.Name = "" },
		"no port":           func(r *fwdlib.Rule) { r.LocalAddr = "127.0.0.1" },
		"zero remote port":  func(r *fwdlib.Rule) { r.RemoteAddr = "example.com:0" },
		"big local port":    func(r *fwdlib.Rule) { r.LocalAddr = "127.0.0.1:65536" },
		"big port":          func(r *fwdlib.Rule) { r.RemoteAddr = "example.com:65536" },
		"text port":         func(r *fwdlib.Rule) { r.LocalAddr = "127.0.0.1:ssh" },
		"negative rate":     func(r *fwdlib.Rule) { r.RateLimitPerSecond = -1 },
		"negative burst":    func(r *fwdlib.Rule) { r.RateLimitBurst = -1 },
		"empty remote addr": func(r *fwdlib.Rule) { r.RemoteAddr = "" },
	}

	for name, mutate := range testData {
		mutate := mutate

		suite.Run(name, func() {
			rule := suite.valid()
			mutate(&rule)

			suite.ErrorIs(rule.Valid(), fwdlib.ErrConfiguration)
		})
	}
}

func (suite *RuleTestSuite) TestDuplicateNames() {
	err := fwdlib.ValidateRules([]fwdlib.Rule{suite.valid(), suite.valid()})

	suite.ErrorIs(err, fwdlib.ErrConfiguration)
}

func (suite *RuleTestSuite) TestEmptyRuleSet() {
	suite.NoError(fwdlib.ValidateRules(nil))
}

func (suite *RuleTestSuite) TestString() {
	rule := suite.valid()
	rule.RemoteEncrypted = true

	suite.Equal("ssh (0.0.0.0:2222 -> example.com:22[enc])", rule.String())
}

func TestRule(t *testing.T) {
	t.Parallel()
	suite.Run(t, &RuleTestSuite{})
}
