package domain

// Reserved prop names and tags shared by the runtime and the hosts.
const (
	// PropChildren holds the normalized child element list of every Element.
	PropChildren = "children"

	// PropNodeValue is the single prop carried by text elements.
	PropNodeValue = "nodeValue"

	// TextTag is the host tag requested from CreateNode for text elements.
	TextTag = "#text"

	// RootTag labels the container fiber that anchors every render pass.
	RootTag = "#root"

	// EventPrefix marks props that register listeners instead of attributes ("onClick").
	EventPrefix = "on"
)
