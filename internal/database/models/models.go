package models

func GetModels() []interface{} {
	return []interface{}{
		&Assessment{},

		// We'll add more models here if neccessary
	}
}

const (
	ASSESSMENTS = "assessments"
)
