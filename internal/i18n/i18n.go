// Package i18n renders domain error messages in the caller's language.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

var supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(supported)

// French translations keyed by the English format string.
var french = []struct{ en, fr string }{
	{"validation failed", "la validation a échoué"},
	{"internal server error", "erreur interne du serveur"},
	{"%s is required", "%s est obligatoire"},
	{"%s must be at most %d characters", "%s doit contenir au plus %d caractères"},
	{"%s must be between %d and %d characters", "%s doit contenir entre %d et %d caractères"},
	{"%s must be a hex colour like #A1B2C3", "%s doit être une couleur hexadécimale comme #A1B2C3"},
	{"rating must be between %d and %d", "la note doit être comprise entre %d et %d"},
	{"pseudo is required", "le pseudo est obligatoire"},
	{"pseudo must be between %d and %d characters", "le pseudo doit contenir entre %d et %d caractères"},
	{"pseudo can only contain letters, numbers, _ and -", "le pseudo ne peut contenir que des lettres, des chiffres, _ et -"},
	{"email is required", "l'adresse e-mail est obligatoire"},
	{"email is invalid", "l'adresse e-mail est invalide"},
	{"password must be at least %d characters", "le mot de passe doit contenir au moins %d caractères"},
	{"password must contain an uppercase letter", "le mot de passe doit contenir une majuscule"},
	{"password must contain a lowercase letter", "le mot de passe doit contenir une minuscule"},
	{"password must contain a digit", "le mot de passe doit contenir un chiffre"},
	{"password must contain a special character", "le mot de passe doit contenir un caractère spécial"},
	{"character is already awaiting review", "le personnage est déjà en attente de modération"},
	{"an approved character cannot be submitted again", "un personnage approuvé ne peut pas être soumis à nouveau"},
	{"only a pending character can be approved", "seul un personnage en attente peut être approuvé"},
	{"only a pending character can be rejected", "seul un personnage en attente peut être rejeté"},
	{"only an approved character can be shared", "seul un personnage approuvé peut être partagé"},
	{"a character awaiting review cannot be edited", "un personnage en attente de modération ne peut pas être modifié"},
	{"only a pending comment can be approved", "seul un commentaire en attente peut être approuvé"},
	{"only a pending comment can be rejected", "seul un commentaire en attente peut être rejeté"},
	{"account is already suspended", "le compte est déjà suspendu"},
	{"account is not suspended", "le compte n'est pas suspendu"},
	{"authentication required", "authentification requise"},
	{"invalid credentials", "identifiants invalides"},
	{"account is suspended", "le compte est suspendu"},
	{"password change required", "changement de mot de passe requis"},
	{"insufficient permissions", "permissions insuffisantes"},
	{"admin accounts cannot be managed", "les comptes administrateurs ne peuvent pas être gérés"},
	{"character not found", "personnage introuvable"},
	{"comment not found", "commentaire introuvable"},
	{"user not found", "utilisateur introuvable"},
	{"character class not found", "classe de personnage introuvable"},
	{"resource not found", "ressource introuvable"},
	{"a character with this name already exists", "un personnage portant ce nom existe déjà"},
	{"you have already commented on this character", "vous avez déjà commenté ce personnage"},
	{"email is already registered", "cette adresse e-mail est déjà utilisée"},
	{"pseudo is already taken", "ce pseudo est déjà pris"},
	{"resource was modified concurrently", "la ressource a été modifiée entre-temps"},
	{"you cannot comment on your own character", "vous ne pouvez pas commenter votre propre personnage"},
	{"only shared characters accept comments", "seuls les personnages partagés acceptent des commentaires"},
	{"current password is incorrect", "le mot de passe actuel est incorrect"},
	{"password confirmation is incorrect", "la confirmation du mot de passe est incorrecte"},
	{"from must not be after to", "la date de début doit précéder la date de fin"},
	{"resource already exists", "la ressource existe déjà"},
	{"invalid payload", "corps de requête invalide"},
	{"invalid query parameter %s", "paramètre de requête invalide %s"},
}

func init() {
	for _, m := range french {
		if err := message.SetString(language.French, m.en, m.fr); err != nil {
			panic(err)
		}
	}
}

// Default is the language used when nothing in Accept-Language matches.
func Default() language.Tag {
	return language.English
}

// Supported returns the languages with a catalog.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match picks the best supported language for an Accept-Language header,
// or fallback when the header is empty or matches nothing.
func Match(acceptLanguage string, fallback language.Tag) language.Tag {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

// ParseLocale resolves a configured locale name, falling back to English.
func ParseLocale(name string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(name))
	if err != nil {
		return Default()
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Default()
	}
	return supported[idx]
}

// Message is a localized domain error ready for a response body.
type Message struct {
	Text   string
	Fields map[string][]string
}

// Localize renders err and its field violations in tag.
func Localize(tag language.Tag, err *apperrors.DomainError) Message {
	p := message.NewPrinter(tag)
	out := Message{Text: render(p, err.Format, err.Args, err.Message)}
	if len(err.Fields) > 0 {
		out.Fields = make(map[string][]string, len(err.Fields))
		for _, f := range err.Fields {
			out.Fields[f.Field] = append(out.Fields[f.Field], render(p, f.Format, f.Args, f.Message()))
		}
	}
	return out
}

func render(p *message.Printer, format string, args []any, fallback string) string {
	if format == "" {
		return fallback
	}
	return p.Sprintf(format, args...)
}
