// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// StageContext is one prior stage's output. Later stages receive the
// outputs of earlier ones as an ordered list of these pairs, never as
// hidden shared state.
type StageContext struct {
	Role   types.Role
	Output string
}

// promptData feeds the stage templates.
type promptData struct {
	Domain   string
	Query    string
	Context  []StageContext
	Evidence string
}

// analyzeTmpl classifies the information need before any searching
// happens. Its output steers the research and compose stages.
var analyzeTmpl = template.Must(template.New("analyze").Parse(`The user has asked: '{{.Query}}'

Analyze this {{.Domain}} question and determine:
1. What type of information is needed (gameplay mechanics, locations, items, strategies, lore, etc.)
2. How comprehensive the answer should be
3. What the research phase should focus on

Provide a clear analysis including: the type of information needed, the scope of research required, and specific guidance on what to focus on.
`))

// researchTmpl has the model curate the gathered search findings into raw
// factual material for the writer.
var researchTmpl = template.Must(template.New("research").Parse(`Research the user's question: '{{.Query}}'

Your primary role is to extract factual information, not to compose a final answer.
{{range .Context}}
--- {{.Role}} output ---
{{.Output}}
{{end}}
--- search findings ---
{{.Evidence}}

Follow these steps:
1. Consider the analysis guidance on research scope and focus areas
2. Review the search findings above
3. Return all relevant factual findings exactly as retrieved, without summarizing or rephrasing
4. If the findings are irrelevant to the question, conclude with: 'No relevant information found for [topic] in available sources'

Your output should be raw researched content, ready for the writer to process.
`))

// composeTmpl synthesizes the final user-facing answer from the analysis
// and research outputs.
var composeTmpl = template.Must(template.New("compose").Parse(`You have been provided with research material about {{.Domain}} and analysis guidance.

Your task is to synthesize this into a clear, concise, and well-structured final report that answers the user's question: '{{.Query}}'
{{range .Context}}
--- {{.Role}} output ---
{{.Output}}
{{end}}
Follow these steps:
1. Review the analysis guidance on the type and scope of answer needed
2. Carefully read all research material and identify key facts, data points, and gameplay tips
3. Extract only directly relevant practical details (locations, costs, mission names, strategies)
4. Compose a cohesive report that answers the question directly, matches the indicated scope, includes valuable related insights, and uses headings or bullet points for clarity

Important:
- Do NOT mention the research process, tools, sources, or URLs
- The final report should read as if written by a knowledgeable human expert
- Write the final answer in markdown format
- If the research material does not contain information to answer the question, honestly say "I don't have information about [topic] in my {{.Domain}} knowledge base" rather than providing unrelated content
`))

// renderPrompt executes a stage template with the given data.
func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
