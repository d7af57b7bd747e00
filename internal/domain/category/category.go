// Package category maps decoded events to coarse display/analytics
// categories.
package category

import "github.com/ringcast/ringcast/internal/domain/model"

// Point-type codes on the wire.
const (
	codePunch          = 1
	codeTechnicalBody  = 2
	codeHead           = 3
	codeTechnicalBody2 = 4
	codeTechnicalHead  = 5
)

// Categorize assigns exactly one category to every event kind. The mapping
// is total: anything that is not a scoring action or a referee action is
// Other.
func Categorize(ev model.Event) model.Category {
	switch ev.Kind {
	case model.KindPoints:
		p, ok := ev.Payload.(model.Points)
		if !ok {
			return model.CategoryOther
		}
		return categorizePoints(p.Code)
	case model.KindHitLevel:
		return model.CategoryKick
	case model.KindWarning,
		model.KindChallenge,
		model.KindInjury,
		model.KindBreak,
		model.KindClock,
		model.KindRound,
		model.KindWinner,
		model.KindWinnerRounds:
		return model.CategoryReferee
	case model.KindAthletes,
		model.KindMatchConfig,
		model.KindScores,
		model.KindCurrentScores,
		model.KindFightReady,
		model.KindFightLoaded,
		model.KindRaw:
		return model.CategoryOther
	default:
		return model.CategoryOther
	}
}

func categorizePoints(code int) model.Category {
	switch code {
	case codePunch:
		return model.CategoryPunch
	case codeTechnicalBody, codeTechnicalBody2:
		return model.CategoryTechnicalBody
	case codeHead:
		return model.CategoryHead
	case codeTechnicalHead:
		return model.CategoryTechnicalHead
	default:
		return model.CategoryOther
	}
}
