package render

import (
	"html/template"

	"github.com/sitecraft/templet/core/block"
)

// fragments holds one named template per built-in block type. Each is
// executed with a block.Block, so .Content is the block's content map.
var fragments = template.Must(template.New("fragments").Parse(`
{{- define "text" -}}
<div class="block block-text">{{.Content.value}}</div>
{{- end -}}

{{- define "image" -}}
<figure class="block block-image"><img src="{{.Content.image_url}}" alt="{{.Content.alt}}">{{with .Content.caption}}<figcaption>{{.}}</figcaption>{{end}}</figure>
{{- end -}}

{{- define "video" -}}
<div class="block block-video"><video src="{{.Content.video_url}}" controls></video>{{with .Content.caption}}<p class="caption">{{.}}</p>{{end}}</div>
{{- end -}}

{{- define "audio" -}}
<div class="block block-audio">{{with .Content.title}}<h3>{{.}}</h3>{{end}}<audio src="{{.Content.audio_url}}" controls></audio></div>
{{- end -}}

{{- define "quote" -}}
<blockquote class="block block-quote"><p>{{.Content.text}}</p>{{with .Content.attribution}}<cite>{{.}}</cite>{{end}}</blockquote>
{{- end -}}

{{- define "button" -}}
<a class="block block-button{{with .Content.style}} btn-{{.}}{{end}}" href="{{.Content.href}}">{{.Content.label}}</a>
{{- end -}}

{{- define "grid" -}}
<div class="block block-grid">{{range .Content.items}}<div class="grid-item">{{with .title}}<h3>{{.}}</h3>{{end}}{{with .text}}<p>{{.}}</p>{{end}}</div>{{end}}</div>
{{- end -}}

{{- define "testimonial" -}}
<div class="block block-testimonial">{{with .Content.avatar_url}}<img class="avatar" src="{{.}}" alt="">{{end}}<blockquote>{{.Content.text}}</blockquote>{{with .Content.author}}<span class="author">{{.}}</span>{{end}}</div>
{{- end -}}

{{- define "services" -}}
<div class="block block-services">{{range .Content.items}}<div class="service">{{with .title}}<h3>{{.}}</h3>{{end}}{{with .description}}<p>{{.}}</p>{{end}}</div>{{end}}</div>
{{- end -}}

{{- define "cta" -}}
<section class="block block-cta"><h2>{{.Content.heading}}</h2>{{with .Content.button}}<a class="btn" href="{{.href}}">{{.label}}</a>{{end}}</section>
{{- end -}}

{{- define "hero" -}}
<section class="block block-hero"{{with .Content.image_url}} style="background-image: url('{{.}}')"{{end}}><h1>{{.Content.heading}}</h1>{{with .Content.subheading}}<p>{{.}}</p>{{end}}</section>
{{- end -}}

{{- define "header" -}}
<header class="block block-header">{{with .Content.logo_url}}<img class="logo" src="{{.}}" alt="">{{end}}<nav>{{range .Content.nav_items}}<a href="{{.href}}">{{.label}}</a>{{end}}</nav></header>
{{- end -}}

{{- define "footer" -}}
<footer class="block block-footer">{{with .Content.logo_url}}<img class="logo" src="{{.}}" alt="">{{end}}{{with .Content.text}}<p>{{.}}</p>{{end}}<nav>{{range .Content.nav_items}}<a href="{{.href}}">{{.label}}</a>{{end}}</nav></footer>
{{- end -}}

{{- define "contact_form" -}}
<form class="block block-contact-form" method="post">{{with .Content.heading}}<h2>{{.}}</h2>{{end}}{{range .Content.fields}}<label>{{.label}}<input name="{{.name}}" type="{{.type}}"></label>{{end}}<button type="submit">{{with .Content.submit_label}}{{.}}{{else}}Send{{end}}</button></form>
{{- end -}}
`))

// builtinRenderers wires every supported block type to its fragment.
func builtinRenderers() map[block.Type]Renderer {
	renderers := make(map[block.Type]Renderer, len(block.AllSupportedTypes))
	for _, typ := range block.AllSupportedTypes {
		renderers[typ] = fragmentRenderer{tmpl: fragments, name: string(typ)}
	}
	return renderers
}
