// ABOUTME: Structured intent catalogue and the Spanish prompt templates behind them
// ABOUTME: Quick actions keep exact wording so the backend's retrieval stays precise

package payload

import "fmt"

// Intent identifies a predefined structured action.
type Intent string

// Intents understood by the assistant backend.
const (
	IntentGetR11        Intent = "tms.get_r11"
	IntentGetR12        Intent = "tms.get_r12"
	IntentGetR61        Intent = "tms.get_r61"
	IntentGetBloques    Intent = "tms.get_bloques"
	IntentGetCostos     Intent = "tms.get_costos"
	IntentGetR24        Intent = "tms.get_r24"
	IntentFindRelator   Intent = "tms.find_relator"
	IntentFindPartic    Intent = "tms.find_participante"
	IntentGetAprobados  Intent = "tms.get_participantes_aprobados"
	IntentGetRecursos   Intent = "tms.get_recursos_curso"
	IntentObtenerR11    Intent = "logistica.obtener_r11"
	IntentGetDiploma    Intent = "cliente.get_diploma"
	IntentVerCursos     Intent = "alumno.ver_cursos"
	IntentVerNotas      Intent = "alumno.ver_notas"
	IntentVerAsistencia Intent = "alumno.ver_asistencia"
	IntentMisDatos      Intent = "alumno.mis_datos"
)

// KnownIntent reports whether the intent belongs to the catalogue.
func KnownIntent(i Intent) bool {
	switch i {
	case IntentGetR11, IntentGetR12, IntentGetR61, IntentGetBloques,
		IntentGetCostos, IntentGetR24, IntentFindRelator, IntentFindPartic,
		IntentGetAprobados, IntentGetRecursos, IntentObtenerR11,
		IntentGetDiploma, IntentVerCursos, IntentVerNotas,
		IntentVerAsistencia, IntentMisDatos:
		return true
	}
	return false
}

const scopeHint = "Usa únicamente la entidad kb_curso que haga match por data.codigoCurso y no mezcles con otros cursos."

// courseTemplates are the course-scoped request templates. The wording is
// what the backend's retrieval was tuned against; do not reword casually.
var courseTemplates = map[Intent]string{
	IntentGetR11: `Solicito explícitamente la información del R11 para el codigoCurso: %s. Entrega:
- Relator creador del R11 (nombre completo)
- Objetivo general
- Población objetivo
- Contenidos específicos R11 (lista con horasT y horasP)
- Nota mínima (si existe)
- Horas teóricas, horas prácticas y total
` + scopeHint,

	IntentGetR12: `Solicito explícitamente la información del R12 para el codigoCurso: %s. Entrega:
- Costos R12 desglosados (si existen)
- Observaciones relevantes
` + scopeHint,

	IntentGetR61: `Solicito explícitamente la información del R61 para el codigoCurso: %s. Entrega:
- Registros R61 disponibles
- Contenidos específicos R61 (si existen)
` + scopeHint,

	IntentGetBloques: `Solicito explícitamente la información de los Bloques para el codigoCurso: %s. Entrega:
- Lista de bloques con fecha, horarioInicio, horarioTermino
- Relator por bloque (nombre completo si está disponible)
` + scopeHint,
}

// fixedMessages are intents whose trigger always sends the same question.
var fixedMessages = map[Intent]string{
	IntentObtenerR11:    "Necesito obtener el informe R11",
	IntentVerCursos:     "Muéstrame mis cursos inscritos",
	IntentVerNotas:      "Muéstrame mis notas",
	IntentVerAsistencia: "Muéstrame mi asistencia",
	IntentMisDatos:      "Muéstrame mis datos de alumno",
}

// PromptFor returns the message a guided turn should carry. Course-scoped
// intents get their template rendered with the target; fixed intents get
// their canonical question; anything else falls back to the message the
// trigger supplied.
func PromptFor(intent Intent, target, supplied string) string {
	if tpl, ok := courseTemplates[intent]; ok && target != "" {
		return fmt.Sprintf(tpl, target)
	}
	if msg, ok := fixedMessages[intent]; ok {
		return msg
	}
	return supplied
}
