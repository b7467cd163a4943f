package models

// All lists every model in migration order.
func All() []any {
	return []any{
		&Category{},
		&Skill{},
		&Profile{},
		&ClientInfo{},
		&FreelancerSkill{},
		&Education{},
		&Certification{},
		&PortfolioItem{},
		&Job{},
		&Proposal{},
		&Review{},
	}
}
