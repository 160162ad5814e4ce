/*
Package mediator is the single owner of the open mind map.

Every graph edit goes through a Mediator, which applies it to the document, records it
in the undo history and raises the modified flag inside one critical section. File I/O
and export go through the ports.Codec and ports.Exporter collaborators.

	m := mediator.New(
		mediator.WithCodec(alz.New()),
		mediator.WithExporter(png.New()),
	)
	m.InitializeNewMindMap()
	child, err := m.CreateAndAddNode(&root, domain.Point{X: 200})
*/
package mediator
