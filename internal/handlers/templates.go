package handlers

import (
	"github.com/gin-contrib/multitemplate"
)

const ShoppingCartTemplate = "shopping_cart.html"

const shoppingCartHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Shopping list</title></head>
<body>
<h1>Shopping list for {{.User.Username}}</h1>
{{if .Items}}<ul>
{{range .Items}}<li>{{.Name}} ({{.Unit}}) — {{.Total}}</li>
{{end}}</ul>{{else}}<p>Your shopping cart is empty.</p>{{end}}
</body>
</html>
`

// Templates builds the HTML renderer for the few non-JSON pages.
func Templates() multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	r.AddFromString(ShoppingCartTemplate, shoppingCartHTML)
	return r
}
