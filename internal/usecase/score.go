package usecase

// ScoreForBudget maps the self-reported budget bracket to a 0-100 lead score.
// This lookup is the entire scoring model.
func ScoreForBudget(budget string) int {
	switch budget {
	case "500k+":
		return 90
	case "100k-500k":
		return 75
	case "50k-100k":
		return 60
	default:
		return 50
	}
}
