package services

type answeredEffect int

const (
	answeredUnchanged answeredEffect = iota
	markAnswered
	markUnanswered
)

// answeredTransition decides what happens to a question's answered flag once
// its answer count has changed. A question is answered exactly while it has
// at least one answer.
func answeredTransition(wasAnswered bool, answersAfter int64) answeredEffect {
	switch {
	case !wasAnswered && answersAfter > 0:
		return markAnswered
	case wasAnswered && answersAfter == 0:
		return markUnanswered
	default:
		return answeredUnchanged
	}
}
