package describe

import (
	"strings"
	"testing"
)

const englishPage = `<html><head><title>Intro to Sales</title></head><body>
<article>
<h1>Intro to Sales</h1>
<p>This course covers the fundamentals of selling. You will learn how to
approach prospects, handle objections, and close deals with confidence.
Each lesson builds on the previous one, so watch them in order.</p>
<p>The material is drawn from decades of field experience and includes
role-play exercises you can practice with a partner.</p>
</article>
</body></html>`

const spanishPage = `<html><head><title>Curso de Ventas</title></head><body>
<article>
<h1>Curso de Ventas</h1>
<p>Este curso cubre los fundamentos de la venta profesional. Aprenderás a
tratar con clientes potenciales, manejar objeciones y cerrar acuerdos con
confianza. Cada lección se basa en la anterior, así que míralas en orden.</p>
<p>El material proviene de décadas de experiencia práctica e incluye
ejercicios que puedes practicar con un compañero.</p>
</article>
</body></html>`

func TestDescribe_English(t *testing.T) {
	d, err := Describe("https://training.example.com/courses/intro", englishPage)
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if d.Title != "Intro to Sales" {
		t.Errorf("Title = %q", d.Title)
	}
	if !strings.Contains(d.Text, "fundamentals of selling") {
		t.Errorf("Text missing body content: %q", d.Text)
	}
	if d.Language != "en" {
		t.Errorf("Language = %q, want %q", d.Language, "en")
	}
}

func TestDescribe_Spanish(t *testing.T) {
	d, err := Describe("https://training.example.com/courses/ventas", spanishPage)
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if d.Language != "es" {
		t.Errorf("Language = %q, want %q", d.Language, "es")
	}
}

func TestDescribe_BadURL(t *testing.T) {
	if _, err := Describe("://not-a-url", englishPage); err == nil {
		t.Error("Describe() expected an error for a bad URL")
	}
}

func TestDetectLanguage_TooShort(t *testing.T) {
	if got := DetectLanguage("Start Now"); got != "" {
		t.Errorf("DetectLanguage() = %q, want empty for short text", got)
	}
	if got := DetectLanguage(""); got != "" {
		t.Errorf("DetectLanguage(\"\") = %q, want empty", got)
	}
}
