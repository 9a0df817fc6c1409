package account

import "unicode"

const minPasswordLength = 6

// passwordProblems lists every rule the password breaks.
func passwordProblems(p string) []string {
	var (
		out                           []string
		digit, lower, upper, nonAlnum bool
	)
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r):
			nonAlnum = true
		}
	}
	if len([]rune(p)) < minPasswordLength {
		out = append(out, "Passwords must be at least 6 characters.")
	}
	if !nonAlnum {
		out = append(out, "Passwords must have at least one non alphanumeric character.")
	}
	if !digit {
		out = append(out, "Passwords must have at least one digit ('0'-'9').")
	}
	if !lower {
		out = append(out, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if !upper {
		out = append(out, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	return out
}
