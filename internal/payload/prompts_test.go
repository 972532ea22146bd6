// ABOUTME: Tests for the intent catalogue and prompt templates
// ABOUTME: Course templates must embed the target code and the kb_curso scope hint

package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptFor_CourseTemplates(t *testing.T) {
	for _, intent := range []Intent{IntentGetR11, IntentGetR12, IntentGetR61, IntentGetBloques} {
		msg := PromptFor(intent, "R-REC-214", "")
		assert.Contains(t, msg, "codigoCurso: R-REC-214", "intent %s", intent)
		assert.Contains(t, msg, "kb_curso", "intent %s must scope retrieval", intent)
	}
}

func TestPromptFor_FixedMessages(t *testing.T) {
	assert.Equal(t, "Necesito obtener el informe R11", PromptFor(IntentObtenerR11, "", ""))
	assert.Equal(t, "Muéstrame mis cursos inscritos", PromptFor(IntentVerCursos, "", ""))
}

func TestPromptFor_FallsBackToSupplied(t *testing.T) {
	assert.Equal(t, "busca al relator Juan Pérez", PromptFor(IntentFindRelator, "", "busca al relator Juan Pérez"))
}

func TestPromptFor_CourseTemplateWithoutTargetFallsBack(t *testing.T) {
	assert.Equal(t, "dame el R11", PromptFor(IntentGetR11, "", "dame el R11"))
}

func TestKnownIntent(t *testing.T) {
	assert.True(t, KnownIntent(IntentGetBloques))
	assert.True(t, KnownIntent(IntentGetDiploma))
	assert.False(t, KnownIntent(Intent("tms.delete_everything")))
}

func TestWantsCompare(t *testing.T) {
	assert.True(t, WantsCompare("quiero COMPARAR dos cursos"))
	assert.True(t, WantsCompare("¿cuál es la diferencia entre ambos?"))
	assert.True(t, WantsCompare("A versus B"))
	assert.False(t, WantsCompare("muéstrame el R11"))
	assert.False(t, WantsCompare(""))
}

func TestIsCourseCode(t *testing.T) {
	assert.True(t, IsCourseCode("R-REC-214"))
	assert.True(t, IsCourseCode("r-rec-214"))
	assert.True(t, IsCourseCode("  R-ABC-1  "))
	assert.False(t, IsCourseCode("REC-214"))
	assert.False(t, IsCourseCode("R-REC-214 extra"))
}
