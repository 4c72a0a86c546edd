package templates

const TikZTemplate = `% Schedule: {{.Title}}
% Algorithm: {{.Algorithm}}
% Hyperperiod: {{.Hyperperiod}}
% Verdict: {{.Verdict}}
\begin{tikzpicture}[x=1pt,y=1pt]
{{range .Colors}}\definecolor{rts{{.Name}}}{rgb}{ {{- num .R}},{{num .G}},{{num .B -}} }
{{end}}
{{range .Boxes}}% {{.Task}} [{{.Start}}, {{.End}})
\filldraw[draw=rts{{.Color}},fill=rts{{.Color}}] ({{num .X}},{{num .Y}}) rectangle ({{num (add .X .W)}},{{num (add .Y .H)}});
{{end}}
{{range .Lines}}\draw[rts{{.Color}}{{if .Dashed}},dashed{{end}}] ({{num .X1}},{{num .Y1}}) -- ({{num .X2}},{{num .Y2}});
{{end}}
{{range .Labels}}\node[anchor={{anchor .HAlign .VAlign}},inner sep=0pt] at ({{num .X}},{{num .Y}}) { {{- .Text -}} };
{{end}}\end{tikzpicture}
`
