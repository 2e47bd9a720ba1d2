package divorce

import (
	"fmt"

	"github.com/jfuentesmx/tramite"
)

// static wraps a fixed wording as a TitleFunc.
func static(s string) tramite.TitleFunc {
	return func(tramite.Answers) string { return s }
}

func hasChildren(a tramite.Answers) bool {
	return a.Bool(KeyMarriageHasChildren)
}

func choseOther(key string) tramite.Predicate {
	return func(a tramite.Answers) bool {
		return a.String(key) == OptionOther
	}
}

func separado(a tramite.Answers) bool {
	return a.String(KeyModality) == tramite.ModalitySeparate
}

// Graph returns the full voluntary divorce step graph in declaration
// order: shared welcome, the requester's personal and settlement data,
// the spouse's personal data, and the shared signing tail.
func Graph() []tramite.StepDefinition {
	b := tramite.NewGraph().
		Step(KeyWelcome, tramite.Optional(),
			tramite.Titled(static("¡Bienvenido al trámite de Divorcio Voluntario!")))

	requesterSteps(b)
	marriageSteps(b)
	childrenSteps(b)
	expenseSteps(b)
	addressSteps(b)

	b.Step(KeyMarriageCertificate,
		tramite.For(tramite.RoleRequester),
		tramite.Optional(),
		tramite.Titled(static("Sube el acta de matrimonio")),
	)

	spouseSteps(b)
	signingSteps(b)
	return b.Build()
}

func requesterSteps(b *tramite.GraphBuilder) {
	forRequester := tramite.For(tramite.RoleRequester)
	b.
		Step(KeyRequesterName, forRequester,
			tramite.Titled(static("¿Cuál es el nombre del primer cónyuge?"))).
		Step(KeyRequesterSurname1, forRequester,
			tramite.Titled(static("Apellido paterno del primer cónyuge"))).
		Step(KeyRequesterSurname2, forRequester,
			tramite.Titled(static("Apellido materno del primer cónyuge"))).
		Step(KeyRequesterCURP, forRequester, tramite.AsCURP(),
			tramite.Titled(static("CURP del primer cónyuge"))).
		Step(KeyRequesterBirthDate, forRequester,
			tramite.Titled(static("Fecha de nacimiento del primer cónyuge"))).
		Step(KeyRequesterIDCard, forRequester,
			tramite.Titled(static("Sube la INE del primer cónyuge"))).
		Step(KeyModality, forRequester,
			tramite.Titled(static("¿Llenarán el trámite juntos o por separado?")))
}

func marriageSteps(b *tramite.GraphBuilder) {
	forRequester := tramite.For(tramite.RoleRequester)
	b.
		Step(KeyMarriageDate, forRequester,
			tramite.Titled(static("¿Cuándo se casaron?"))).
		Step(KeyMarriageState, forRequester,
			tramite.Titled(static("¿En qué estado se casaron?"))).
		Step(KeyMarriageCity, forRequester,
			tramite.Titled(func(a tramite.Answers) string {
				if estado := a.String(KeyMarriageState); estado != "" {
					return fmt.Sprintf("¿En qué ciudad de %s se casaron?", estado)
				}
				return "¿En qué ciudad se casaron?"
			})).
		Step(KeyMarriageRegime, forRequester,
			tramite.Titled(static("¿Bajo qué régimen patrimonial se casaron?"))).
		Step(KeyMarriageHasChildren, forRequester,
			tramite.Titled(static("¿Tienen hijos en común?")))
}

func childrenSteps(b *tramite.GraphBuilder) {
	forRequester := tramite.For(tramite.RoleRequester)
	b.
		Step(KeyChildrenCount, forRequester, tramite.When(hasChildren),
			tramite.Titled(static("¿Cuántos hijos tienen?"))).
		Step(KeyChildLivesWith, forRequester, tramite.When(hasChildren),
			tramite.Titled(static("¿Con quién vivirá el menor?"))).
		Step(KeyVisitationDays, forRequester, tramite.When(hasChildren),
			tramite.Titled(func(a tramite.Answers) string {
				if con := a.String(KeyChildLivesWith); con != "" {
					return fmt.Sprintf("El menor vivirá con %s. ¿Qué días convivirá con el otro cónyuge?", con)
				}
				return "¿Qué días de convivencia tendrá el otro cónyuge?"
			})).
		Step(KeyVisitationHolidays, forRequester, tramite.When(hasChildren),
			tramite.Titled(static("¿Cómo se repartirán las vacaciones?")))
}

func expenseSteps(b *tramite.GraphBuilder) {
	forRequester := tramite.For(tramite.RoleRequester)
	medicalOther := choseOther(KeyMedicalExpenses)
	schoolOther := choseOther(KeySchoolExpenses)
	b.
		Step(KeyMedicalExpenses, forRequester, tramite.When(hasChildren),
			tramite.Titled(static("¿Quién cubrirá los gastos médicos?"))).
		Step(KeyMedicalExpensesOther, forRequester,
			tramite.When(func(a tramite.Answers) bool { return hasChildren(a) && medicalOther(a) }),
			tramite.Titled(static("Describe el acuerdo sobre gastos médicos"))).
		Step(KeySchoolExpenses, forRequester, tramite.When(hasChildren),
			tramite.Titled(static("¿Quién cubrirá los gastos escolares?"))).
		Step(KeySchoolExpensesOther, forRequester,
			tramite.When(func(a tramite.Answers) bool { return hasChildren(a) && schoolOther(a) }),
			tramite.Titled(static("Describe el acuerdo sobre gastos escolares"))).
		Step(KeyAlimonyAmount, forRequester, tramite.When(hasChildren),
			tramite.Titled(static("¿De cuánto será la pensión alimenticia mensual?"))).
		Step(KeyAlimonyResponsible, forRequester, tramite.When(hasChildren),
			tramite.Titled(static("¿Quién será responsable de la pensión?")))
}

func addressSteps(b *tramite.GraphBuilder) {
	forRequester := tramite.For(tramite.RoleRequester)
	b.
		Step(KeyAddressStreet, forRequester,
			tramite.Titled(static("Calle del domicilio para notificaciones"))).
		Step(KeyAddressNumber, forRequester,
			tramite.Titled(static("Número del domicilio"))).
		Step(KeyAddressSuburb, forRequester,
			tramite.Titled(static("Colonia")))
}

func spouseSteps(b *tramite.GraphBuilder) {
	forSpouse := tramite.For(tramite.RoleSpouse)
	b.
		Step(KeyReview, forSpouse, tramite.When(separado),
			tramite.Titled(static("Revisa los datos capturados por tu cónyuge"))).
		Step(KeySpouseName, forSpouse,
			tramite.Titled(static("¿Cuál es el nombre del segundo cónyuge?"))).
		Step(KeySpouseSurname1, forSpouse,
			tramite.Titled(static("Apellido paterno del segundo cónyuge"))).
		Step(KeySpouseSurname2, forSpouse,
			tramite.Titled(static("Apellido materno del segundo cónyuge"))).
		Step(KeySpouseCURP, forSpouse, tramite.AsCURP(),
			tramite.Titled(static("CURP del segundo cónyuge"))).
		Step(KeySpouseBirthDate, forSpouse,
			tramite.Titled(static("Fecha de nacimiento del segundo cónyuge"))).
		Step(KeySpouseIDFront, forSpouse,
			tramite.Titled(static("Sube el frente de la INE del segundo cónyuge"))).
		Step(KeySpouseIDBack, forSpouse,
			tramite.Titled(static("Sube el reverso de la INE del segundo cónyuge"))).
		Step(KeySpouseEmail, forSpouse,
			tramite.Titled(static("Correo electrónico del segundo cónyuge")))
}

func signingSteps(b *tramite.GraphBuilder) {
	b.
		Step(KeyRequesterSignature,
			tramite.Titled(static("Firma del primer cónyuge"))).
		Step(KeySpouseSignature,
			tramite.Titled(static("Firma del segundo cónyuge")))
}
