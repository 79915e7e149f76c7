package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	PasswordMinLength = 8

	// Separador de los mensajes compuestos que muestra el frontend
	LineBreak = "<br /><br />"

	MandatoryMsg     = "El campo es obligatorio y no puede estar vacío"
	UniqueMsg        = "El campo no puede estar repetido"
	AllowedValuesMsg = "Valores permitidos"
	DateFormatMsg    = "Formato correcto: dd/mm/yyyy"
	TimeFormatMsg    = "Formato correcto: hh:mm"
	InvalidDateMsg   = "Fecha no válida"
	InvalidTimeMsg   = "Hora no válida"
	InvalidEmailMsg  = "Correo electrónico no válido"
	InvalidIDMsg     = "Identificador no válido"
)

var InvalidPasswordMsg = fmt.Sprintf(
	"La contraseña tiene que estar formada por letras y números y tener una longitud mínima de %d",
	PasswordMinLength,
)

func InvalidYearMsg(minYear int) string {
	return fmt.Sprintf("El año debe ser a partir de %d", minYear)
}

func LoginMsg(role string) string {
	if role != "" {
		return fmt.Sprintf("Debes iniciar sesión como %q", role)
	}
	return "Debes iniciar sesión"
}

func NotAllowedActionMsg(reason string) string {
	return "No tienes permisos para realizar la acción solicitada: " + reason
}

func EventNotFoundMsg(id string) string {
	return fmt.Sprintf("No se ha encontrado ningún evento con el identificador %q", id)
}

func UserNotFoundMsg(id string) string {
	return fmt.Sprintf("No se ha encontrado ningún usuario con el identificador %q", id)
}

var (
	dateRe     = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	timeRe     = regexp.MustCompile(`^\d{2}:\d{2}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordRe = regexp.MustCompile(fmt.Sprintf(`^[a-zñA-ZÑ\d]{%d,}$`, PasswordMinLength))

	punctRe      = regexp.MustCompile(`[.,:-]`)
	spacesRe     = regexp.MustCompile(`\s+`)
	spacePunctRe = regexp.MustCompile(`\s([.,:-])`)
	spaceRe      = regexp.MustCompile(`\s`)
)

func IsFormattedDate(date string) bool { return dateRe.MatchString(date) }

func IsFormattedTime(tm string) bool { return timeRe.MatchString(tm) }

func IsEmail(email string) bool { return emailRe.MatchString(email) }

func IsPassword(password string) bool { return passwordRe.MatchString(password) }

func IsLeapYear(year int) bool {
	if year%400 == 0 {
		return true
	}
	if year%100 == 0 {
		return false
	}
	return year%4 == 0
}

func splitDate(date string) (day, month, year int, ok bool) {
	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	day, _ = strconv.Atoi(parts[0])
	month, _ = strconv.Atoi(parts[1])
	year, _ = strconv.Atoi(parts[2])
	return day, month, year, true
}

func IsValidDateYear(date string, minYear int) bool {
	_, _, year, ok := splitDate(date)
	return ok && year >= minYear
}

// IsValidDate comprueba que el día exista en el calendario para el mes y el
// año indicados, incluidos los años bisiestos.
func IsValidDate(date string) bool {
	day, month, year, ok := splitDate(date)
	if !ok {
		return false
	}
	if month == 2 {
		return day >= 1 && (day <= 28 || (day == 29 && IsLeapYear(year)))
	}
	if day >= 1 && day <= 30 && month >= 1 && month <= 12 {
		return true
	}
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return day == 31
	}
	return false
}

func IsValidTime(tm string) bool {
	parts := strings.Split(tm, ":")
	if len(parts) != 2 {
		return false
	}
	hour, _ := strconv.Atoi(parts[0])
	minute, _ := strconv.Atoi(parts[1])
	return hour <= 23 && minute <= 59
}

// ParseID valida que el identificador de ruta sea un entero positivo.
func ParseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// DateTimeKey devuelve la clave compuesta "YYYYMMDDHHmm" de una fecha y una
// hora ya validadas. Al ser de ancho fijo y con ceros a la izquierda, la
// comparación lexicográfica equivale a la cronológica.
func DateTimeKey(date, tm string) string {
	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return date + tm
	}
	return parts[2] + parts[1] + parts[0] + strings.ReplaceAll(tm, ":", "")
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold elimina tildes y pasa a minúsculas, para comparaciones y búsquedas
// insensibles a mayúsculas y acentos.
func Fold(s string) string {
	folded, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// NormalizeText elimina espacios innecesarios y normaliza el espaciado de
// los signos de puntuación: uno detrás de ".,:-" y ninguno delante.
func NormalizeText(s string) string {
	s = punctRe.ReplaceAllString(s, "$0 ")
	s = spacesRe.ReplaceAllString(s, " ")
	s = spacePunctRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// NormalizeUsername elimina espacios y tildes y pasa a minúsculas.
func NormalizeUsername(username string) string {
	return Fold(spaceRe.ReplaceAllString(username, ""))
}
