package client

import (
	"fmt"
	"html/template"
	"io"

	"taskboard/internal/model"
)

const boardTemplates = `
{{define "kanban"}}<div class="board">
{{range .Columns}}<section class="column" data-status="{{.Status}}">
	<h2>{{.Status}}</h2>
	{{range .Tasks}}<article class="card" data-id="{{.ID}}" style="border-color: {{.ProjectColor}}">
		<header><span class="task-id">{{.ID}}</span> {{.Title}}</header>
		<p>{{.Description}}</p>
		<footer>
			<span class="project">{{.Project}}</span>
			<span class="priority">{{.Priority}}</span>
			{{range .Responsible}}<span class="responsible">{{.Name}}</span>{{end}}
		</footer>
	</article>{{end}}
</section>{{end}}
</div>{{end}}

{{define "list"}}<table class="task-list">
<thead><tr><th>ID</th><th>Título</th><th>Responsável</th><th>Projeto</th><th>Prioridade</th><th>Status</th><th>Criado em</th></tr></thead>
<tbody>
{{range .Rows}}<tr data-id="{{.ID}}">
	<td>{{.ID}}</td>
	<td>{{.Title}}</td>
	<td>{{responsibleNames .}}</td>
	<td><span style="color: {{.ProjectColor}}">{{.Project}}</span></td>
	<td>{{.Priority}}</td>
	<td>{{.Status}}</td>
	<td>{{.CreatedAt}}</td>
</tr>{{end}}
</tbody>
</table>{{end}}

{{define "archived"}}<table class="archive">
<thead><tr><th>ID</th><th>Título</th><th>Projeto</th><th>Concluído por</th></tr></thead>
<tbody>
{{range .Rows}}<tr data-id="{{.ID}}">
	<td>{{.ID}}</td>
	<td>{{.Title}}</td>
	<td>{{.Project}}</td>
	<td>{{responsibleNames .}}</td>
</tr>{{end}}
</tbody>
</table>{{end}}
`

// Renderer turns a State into markup for whichever view is selected. It
// holds no state of its own and is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("board").Funcs(template.FuncMap{
		"responsibleNames": func(t model.Task) string {
			names := t.ResponsibleNames()
			if len(names) == 0 {
				return model.PlaceholderName
			}
			out := names[0]
			for _, n := range names[1:] {
				out += ", " + n
			}
			return out
		},
	}).Parse(boardTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the markup for the state's current view.
func (r *Renderer) Render(w io.Writer, s State) error {
	switch s.CurrentView {
	case ViewKanban:
		return r.tmpl.ExecuteTemplate(w, "kanban", struct{ Columns []KanbanColumn }{KanbanColumns(s)})
	case ViewList:
		return r.tmpl.ExecuteTemplate(w, "list", struct{ Rows []model.Task }{ListRows(s)})
	case ViewArchived:
		return r.tmpl.ExecuteTemplate(w, "archived", struct{ Rows []model.Task }{ArchivedTasks(s)})
	default:
		return fmt.Errorf("unknown view %q", s.CurrentView)
	}
}
