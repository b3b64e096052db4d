package schema

// NameProblem is the outcome of checking a type or field name.
type NameProblem int

const (
	NameOK NameProblem = iota
	NameEmpty
	NameTooLong
	NameNotAlphanumeric
)

func (p NameProblem) String() string {
	switch p {
	case NameOK:
		return "is valid"
	case NameEmpty:
		return "is empty"
	case NameTooLong:
		return "is too long"
	case NameNotAlphanumeric:
		return "must be alphanumeric"
	default:
		return "is invalid"
	}
}

// CheckFieldName accepts 1..MaxFieldNameLength ASCII letters and digits.
func CheckFieldName(name string) NameProblem {
	return checkName(name, MaxFieldNameLength)
}

// CheckTypeName accepts 1..MaxNameLength ASCII letters and digits.
func CheckTypeName(name string) NameProblem {
	return checkName(name, MaxNameLength)
}

func checkName(name string, maxLen int) NameProblem {
	if name == "" {
		return NameEmpty
	}
	for i := 0; i < len(name); i++ {
		if !isAlphanumeric(name[i]) {
			return NameNotAlphanumeric
		}
	}
	if len(name) > maxLen {
		return NameTooLong
	}
	return NameOK
}

func isAlphanumeric(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
