package validation

import (
	"fmt"
	"strings"
	"sync"

	"meetings-backend/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	SortFieldTitle = "title"
	SortFieldDate  = "date"
	OrderAsc       = "asc"
	OrderDesc      = "desc"
)

// El collator no es seguro para uso concurrente.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Spanish, collate.Loose)
)

// compareLoose compara dos cadenas según el locale ignorando tildes,
// minúsculas y mayúsculas.
func compareLoose(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// SortEvents ordena por título (alfabético, insensible a tildes y
// mayúsculas) o por fecha y hora. Un campo u orden desconocido no ordena:
// se conserva el orden de la colección.
func SortEvents(e1, e2 *models.Event, field, order string) int {
	switch field {
	case SortFieldTitle:
		switch order {
		case OrderAsc:
			return compareLoose(e1.Title, e2.Title)
		case OrderDesc:
			return compareLoose(e2.Title, e1.Title)
		}
	case SortFieldDate:
		switch order {
		case OrderAsc:
			return strings.Compare(DateTimeKey(e1.Date, e1.Time), DateTimeKey(e2.Date, e2.Time))
		case OrderDesc:
			return strings.Compare(DateTimeKey(e2.Date, e2.Time), DateTimeKey(e1.Date, e1.Time))
		}
	}
	return 0
}

func userSortKey(u *models.User) string {
	return fmt.Sprintf("%s, %s (%s)", u.Surnames, u.Name, u.Username)
}

// SortUsers ordena siempre por "apellidos, nombre (usuario)", ascendente.
func SortUsers(u1, u2 *models.User) int {
	return compareLoose(userSortKey(u1), userSortKey(u2))
}

// MatchesTitle indica si el título contiene la subcadena buscada, ignorando
// tildes, minúsculas y mayúsculas.
func MatchesTitle(title, query string) bool {
	return strings.Contains(Fold(title), Fold(NormalizeText(query)))
}
