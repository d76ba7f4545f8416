package models

import "github.com/google/uuid"

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All lists every model managed by migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&Step{},
		&Subtask{},
		&ProjectMember{},
		&Invitation{},
		&Note{},
	}
}
