package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const itemXML = `<?xml version="1.0" encoding="UTF-8"?>
<documento fecha_actualizacion="20250417120000">
  <metadatos>
    <identificador>BOE-A-2025-7001</identificador>
    <titulo>Resolución de prueba</titulo>
  </metadatos>
  <analisis><materias><materia>Ignorada</materia></materias></analisis>
  <texto>
    <p class="parrafo">Primero   </p>
    <p class="parrafo">  Segundo A|B</p>
    <table>
      <tr><td>c1</td><td>c2</td></tr>
    </table>
    <p class="parrafo">   </p>
  </texto>
</documento>`

func TestExtractText(t *testing.T) {
	assert.Equal(t, "Primero Segundo A&#124;B c1 c2", ExtractText([]byte(itemXML)))
}

func TestExtractText_Degrades(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{name: "no texto", xml: `<documento><metadatos><titulo>x</titulo></metadatos></documento>`},
		{name: "malformed", xml: `<documento><texto><p>unterminated</texto>`},
		{name: "not xml", xml: `{"json": true}`},
		{name: "empty", xml: ``},
		{name: "texto without descendants", xml: `<documento><texto>own text only</texto></documento>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "", ExtractText([]byte(tt.xml)))
		})
	}
}

func TestExtractText_TextoAsRoot(t *testing.T) {
	assert.Equal(t, "uno dos", ExtractText([]byte(`<texto><p>uno</p><div><p>dos</p></div></texto>`)))
}

func TestExtractText_OnlyLeadingTextOfEachElement(t *testing.T) {
	// tail text after a child element is not part of either element's direct text
	doc := `<documento><texto><p>antes <b>negrita</b> después</p></texto></documento>`
	assert.Equal(t, "antes negrita", ExtractText([]byte(doc)))
}

func TestExtractText_DeclaredCharset(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<documento><texto><p>Espa\xf1a cami\xf3n</p></texto></documento>")
	assert.Equal(t, "España camión", ExtractText(doc))
}

func TestEscapePipes(t *testing.T) {
	assert.Equal(t, "a&#124;b&#124;&#124;c", EscapePipes("a|b||c"))
	assert.Equal(t, "", EscapePipes(""))
}
