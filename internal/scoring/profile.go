package scoring

type Profile string

const (
	ProfileLeader         Profile = "Leader"
	ProfilePerformer      Profile = "Performer"
	ProfileVisionary      Profile = "Visionary"
	ProfileUnderestimator Profile = "Underestimator"
	ProfileAtRisk         Profile = "At-Risk"
	ProfileDeveloping     Profile = "Developing"
)

type profileInput struct {
	weighted       float64
	avgGap         float64
	leadershipSelf float64
	teamSize       int
	coverage       int
}

// Urutan aturan penting: overclaim besar selalu At-Risk, baru kemudian
// profil berprestasi, lalu pola gap positif dan ambisi kepemimpinan.
func pickProfile(in profileInput) Profile {
	absGap := in.avgGap
	if absGap < 0 {
		absGap = -absGap
	}

	switch {
	case in.avgGap <= -1.0:
		return ProfileAtRisk
	case in.weighted >= 4.0 && absGap <= 0.5:
		if in.teamSize > 0 && in.coverage >= 80 {
			return ProfileLeader
		}
		return ProfilePerformer
	case in.avgGap >= 1.0:
		return ProfileUnderestimator
	case in.leadershipSelf >= 4.0 && in.weighted < 3.5:
		return ProfileVisionary
	case in.weighted >= 3.5:
		return ProfilePerformer
	default:
		return ProfileDeveloping
	}
}
