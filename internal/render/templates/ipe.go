package templates

const IpeTemplate = `<?xml version="1.0"?>
<!DOCTYPE ipe SYSTEM "ipe.dtd">
<ipe version="70206" creator="rtsched">
<!-- Schedule: {{xml .Title}} -->
<!-- Algorithm: {{xml .Algorithm}} -->
<!-- Hyperperiod: {{.Hyperperiod}} -->
<!-- Verdict: {{xml .Verdict}} -->
<ipestyle name="rtsched">
{{range .Colors}}<color name="{{xml .Name}}" value="{{num .R}} {{num .G}} {{num .B}}"/>
{{end}}<dashstyle name="dashed" value="[4] 0"/>
</ipestyle>
<page>
<layer name="alpha"/>
<view layers="alpha" active="alpha"/>
{{range .Boxes}}<path layer="alpha" stroke="{{xml .Color}}" fill="{{xml .Color}}">
{{num .X}} {{num .Y}} m
{{num (add .X .W)}} {{num .Y}} l
{{num (add .X .W)}} {{num (add .Y .H)}} l
{{num .X}} {{num (add .Y .H)}} l
h
</path>
{{end}}{{range .Lines}}<path stroke="{{xml .Color}}"{{if .Dashed}} dash="dashed"{{end}}>
{{num .X1}} {{num .Y1}} m
{{num .X2}} {{num .Y2}} l
</path>
{{end}}{{range .Labels}}<text transformations="translations" pos="{{num .X}} {{num .Y}}" stroke="axis" type="label" depth="0" halign="{{.HAlign}}" valign="{{.VAlign}}">{{xml .Text}}</text>
{{end}}</page>
</ipe>
`
