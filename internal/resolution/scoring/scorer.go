// Package scoring combines the similarity primitives into a weighted
// pairwise match score with a confidence tier and merge action.
package scoring

import (
	"fmt"
	"strings"

	"unify/internal/resolution/models"
	"unify/internal/resolution/similarity"
)

// Confidence thresholds for the weighted total.
const (
	autoMergeThreshold = 0.95
	reviewThreshold    = 0.70
)

// freemailDomains are mail providers whose shared domain carries no
// household or employer signal.
var freemailDomains = map[string]struct{}{
	"gmail.com":   {},
	"yahoo.com":   {},
	"outlook.com": {},
}

// Scorer computes MatchScores for candidate pairs. It is stateless once
// constructed; Score is pure and safe for concurrent use.
type Scorer struct {
	weights Weights
	names   *similarity.Matcher
}

// NewScorer validates the weights and builds a scorer around the given name
// matcher.
func NewScorer(weights Weights, names *similarity.Matcher) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights, names: names}, nil
}

// Score computes the full sub-score breakdown for a pair of records of the
// same entity type. Missing fields contribute their neutral value; the
// function never fails on record content.
func (s *Scorer) Score(e1, e2 *models.NormalizedRecord) models.MatchScore {
	score := models.MatchScore{
		Entity1:     e1.Ref(),
		Entity2:     e2.Ref(),
		Entity1Name: e1.Name.Full,
		Entity2Name: e2.Name.Full,
	}

	// SSN/TIN last4: exact match is the strongest signal; absence on either
	// side stays neutral so the weight contributes nothing.
	switch {
	case e1.TaxIDLast4 != "" && e1.TaxIDLast4 == e2.TaxIDLast4:
		score.SSNScore = 1.0
		score.MatchReasons = append(score.MatchReasons,
			fmt.Sprintf("SSN last4 match: ***-**-%s", e1.TaxIDLast4))
	case e1.TaxIDLast4 != "" && e2.TaxIDLast4 != "":
		score.SSNScore = 0.0
		score.MismatchReasons = append(score.MismatchReasons,
			fmt.Sprintf("SSN mismatch: %s vs %s", e1.TaxIDLast4, e2.TaxIDLast4))
	}

	// DOB: partial credit (0.5) when exactly one side has a value. A nil
	// pointer and a pointer to "" both mean absent.
	dob1, dob2 := dobValue(e1.DateOfBirth), dobValue(e2.DateOfBirth)
	switch {
	case dob1 != "" && dob1 == dob2:
		score.DOBScore = 1.0
		score.MatchReasons = append(score.MatchReasons,
			fmt.Sprintf("DOB match: %s", dob1))
	case dob1 != "" && dob2 != "":
		score.DOBScore = 0.0
		score.MismatchReasons = append(score.MismatchReasons,
			fmt.Sprintf("DOB mismatch: %s vs %s", dob1, dob2))
	case dob1 != "" || dob2 != "":
		score.DOBScore = 0.5
	}

	nameSim := s.names.Name(e1.Name, e2.Name)
	score.NameScore = nameSim
	if nameSim >= 0.8 {
		score.MatchReasons = append(score.MatchReasons,
			fmt.Sprintf("Name match (%.0f%%): %s ~ %s", nameSim*100, e1.Name.Full, e2.Name.Full))
	} else if nameSim < 0.5 {
		score.MismatchReasons = append(score.MismatchReasons,
			fmt.Sprintf("Name mismatch (%.0f%%): %s vs %s", nameSim*100, e1.Name.Full, e2.Name.Full))
	}

	addrSim := similarity.Addr(e1.Address, e2.Address)
	score.AddressScore = addrSim
	if addrSim >= 0.8 {
		score.MatchReasons = append(score.MatchReasons,
			fmt.Sprintf("Address match (%.0f%%): %s", addrSim*100, e1.Address.FullAddress))
	}

	if e1.PhonePrimary != nil && e2.PhonePrimary != nil {
		num1, num2 := e1.PhonePrimary.Number, e2.PhonePrimary.Number
		if num1 != "" && num1 == num2 {
			score.PhoneScore = 1.0
			display := e1.PhonePrimary.Formatted
			if display == "" {
				display = num1
			}
			score.MatchReasons = append(score.MatchReasons,
				fmt.Sprintf("Phone match: %s", display))
		}
	}

	if e1.Email != "" && e2.Email != "" {
		if e1.Email == e2.Email {
			score.EmailScore = 1.0
			score.MatchReasons = append(score.MatchReasons,
				fmt.Sprintf("Email match: %s", e1.Email))
		} else if d := emailDomain(e1.Email); d != "" && d == emailDomain(e2.Email) {
			if _, free := freemailDomains[d]; !free {
				score.EmailScore = 0.3
				score.MatchReasons = append(score.MatchReasons,
					fmt.Sprintf("Same email domain: %s", d))
			}
		}
	}

	score.TotalScore = score.SSNScore*s.weights.SSN +
		score.DOBScore*s.weights.DOB +
		score.NameScore*s.weights.Name +
		score.AddressScore*s.weights.Address +
		score.PhoneScore*s.weights.Phone +
		score.EmailScore*s.weights.Email

	switch {
	case score.TotalScore >= autoMergeThreshold:
		score.ConfidenceLevel = models.ConfidenceHigh
		score.MergeAction = models.MergeActionAutoMerge
	case score.TotalScore >= reviewThreshold:
		score.ConfidenceLevel = models.ConfidenceMedium
		score.MergeAction = models.MergeActionReviewRequired
	default:
		score.ConfidenceLevel = models.ConfidenceLow
		score.MergeAction = models.MergeActionKeepSeparate
	}

	return score
}

func dobValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func emailDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return ""
	}
	return email[at+1:]
}
