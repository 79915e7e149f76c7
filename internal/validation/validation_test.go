package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hola,mundo", "Hola, mundo"},
		{"  Hola , mundo  ", "Hola, mundo"},
		{"Evento:prueba", "Evento: prueba"},
		{"uno.dos", "uno. dos"},
		{"varios   espacios\tseguidos", "varios espacios seguidos"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeText(tc.in), "entrada %q", tc.in)
	}
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "josemaria", NormalizeUsername(" José María "))
	assert.Equal(t, "nunez", NormalizeUsername("Núñez"))
	assert.Equal(t, "user123", NormalizeUsername("User 123"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "arbol", Fold("Árbol"))
	assert.Equal(t, "comunion", Fold("COMUNIÓN"))
	assert.Equal(t, "sin cambios", Fold("sin cambios"))
}

func TestIsFormattedDate(t *testing.T) {
	assert.True(t, IsFormattedDate("01/01/2025"))
	assert.False(t, IsFormattedDate("1/1/2025"))
	assert.False(t, IsFormattedDate("01-01-2025"))
	assert.False(t, IsFormattedDate("01/01/25"))
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, IsLeapYear(2024))
	assert.False(t, IsLeapYear(2025))
	assert.False(t, IsLeapYear(1900))
	assert.True(t, IsLeapYear(2000))
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"01/01/2025", "31/01/2025", "30/04/2025", "29/02/2024", "28/02/2025", "31/12/2025"}
	for _, d := range valid {
		assert.True(t, IsValidDate(d), "fecha %q", d)
	}
	invalid := []string{"29/02/2025", "30/02/2024", "31/04/2025", "32/01/2025", "00/01/2025", "15/00/2025", "15/13/2025"}
	for _, d := range invalid {
		assert.False(t, IsValidDate(d), "fecha %q", d)
	}
}

func TestIsValidDateYear(t *testing.T) {
	assert.True(t, IsValidDateYear("01/01/2025", 2025))
	assert.False(t, IsValidDateYear("31/12/2024", 2025))
}

func TestIsValidTime(t *testing.T) {
	assert.True(t, IsValidTime("00:00"))
	assert.True(t, IsValidTime("23:59"))
	assert.False(t, IsValidTime("24:00"))
	assert.False(t, IsValidTime("12:60"))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("usuario@ejemplo.com"))
	assert.False(t, IsEmail("usuario@ejemplo"))
	assert.False(t, IsEmail("usuario ejemplo@dominio.com"))
	assert.False(t, IsEmail("@dominio.com"))
}

func TestIsPassword(t *testing.T) {
	assert.True(t, IsPassword("abcd1234"))
	assert.True(t, IsPassword("contraseÑa1"))
	assert.False(t, IsPassword("corta1"))
	assert.False(t, IsPassword("con espacios 1"))
	assert.False(t, IsPassword("simbolos!123"))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, raw := range []string{"0", "-1", "abc", "", "1.5"} {
		_, ok := ParseID(raw)
		assert.False(t, ok, "identificador %q", raw)
	}
}

func TestDateTimeKey(t *testing.T) {
	assert.Equal(t, "202501011000", DateTimeKey("01/01/2025", "10:00"))
	assert.Equal(t, "202512310959", DateTimeKey("31/12/2025", "09:59"))

	// Clave de ancho fijo: la comparación lexicográfica es cronológica
	assert.Less(t, DateTimeKey("01/01/2025", "09:00"), DateTimeKey("01/01/2025", "10:00"))
	assert.Less(t, DateTimeKey("09/01/2025", "23:00"), DateTimeKey("10/01/2025", "01:00"))
}
