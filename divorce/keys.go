// Package divorce ships the ready-made step graph for the voluntary
// divorce filing, built on the tramite graph primitives.
package divorce

import "regexp"

// Answer keys of the voluntary divorce graph. Each key is also the id
// of the step that collects it.
const (
	KeyWelcome = "bienvenida"

	KeyRequesterName      = "conyuge1_nombre"
	KeyRequesterSurname1  = "conyuge1_apellido_paterno"
	KeyRequesterSurname2  = "conyuge1_apellido_materno"
	KeyRequesterCURP      = "conyuge1_curp"
	KeyRequesterBirthDate = "conyuge1_fechaNacimiento"
	KeyRequesterIDCard    = "conyuge1_ine"

	KeyModality = "modalidad_tramite"

	KeyMarriageDate        = "matrimonio_fecha"
	KeyMarriageState       = "matrimonio_estado"
	KeyMarriageCity        = "matrimonio_ciudad"
	KeyMarriageRegime      = "matrimonio_regimen"
	KeyMarriageHasChildren = "matrimonio_tieneHijos"

	KeyChildrenCount      = "matrimonio_numeroHijos"
	KeyChildLivesWith     = "menor_vivira_con"
	KeyVisitationDays     = "convivencia_dias"
	KeyVisitationHolidays = "convivencia_vacaciones"

	KeyMedicalExpenses      = "gastos_medicos"
	KeyMedicalExpensesOther = "gastos_medicos_otro"
	KeySchoolExpenses       = "gastos_escolares"
	KeySchoolExpensesOther  = "gastos_escolares_otro"
	KeyAlimonyAmount        = "pension_alimenticia_monto"
	KeyAlimonyResponsible   = "pension_alimenticia_responsable"

	KeyAddressStreet = "direccion_calle"
	KeyAddressNumber = "direccion_numero"
	KeyAddressSuburb = "direccion_colonia"

	KeyMarriageCertificate = "doc_actaMatrimonio"

	KeyReview          = "revision_datos"
	KeySpouseName      = "conyuge2_nombre"
	KeySpouseSurname1  = "conyuge2_apellido_paterno"
	KeySpouseSurname2  = "conyuge2_apellido_materno"
	KeySpouseCURP      = "conyuge2_curp"
	KeySpouseBirthDate = "conyuge2_fechaNacimiento"
	KeySpouseIDFront   = "conyuge2_ine_frontal"
	KeySpouseIDBack    = "conyuge2_ine_trasera"
	KeySpouseEmail     = "conyuge2_correo"

	KeyRequesterSignature = "firma_conyuge1"
	KeySpouseSignature    = "firma_conyuge2"
)

// OptionOther is the choice value that unlocks a free-text follow-up
// on the expense steps.
const OptionOther = "Otro"

var curpPattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{6}[HM][A-Z]{5}[0-9]{2}$`)

// ValidCURP reports whether s matches the official CURP shape. The
// engine only enforces length; callers wanting the full format check
// use this before submitting.
func ValidCURP(s string) bool {
	return curpPattern.MatchString(s)
}
