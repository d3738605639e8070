package adapter

// Source keys.
const (
	KeyCD35   = "cd35"
	KeyCD44   = "cd44"
	KeyRennes = "rennes"
	KeyDIRO   = "diro"
)

// Defaults applied when no candidate key yields a value.
const (
	DefaultPriorite        = "Moyenne"
	DefaultStatut          = "Actif"
	DefaultSensCirculation = "N/A"
)

// CD35Schema maps the Ille-et-Vilaine department "Signalements" table.
// The gestionnaire falls back to the administration, then to the reporting
// agent.
func CD35Schema() Schema {
	return Schema{
		Key:              KeyCD35,
		Label:            "CD35",
		GeometryTypeKeys: []string{"geometrie_type"},
		Fields: []Field{
			{Name: "route", Keys: []string{"Route", "route"}},
			{Name: "commune", Keys: []string{"Commune", "commune"}},
			{Name: "type_coupure", Keys: []string{"Type_coupure", "type_coupure"}},
			{Name: "sens_circulation", Keys: []string{"Sens_circulation", "sens_circulation"}, Default: DefaultSensCirculation},
			{Name: "priorite", Keys: []string{"Priorite", "priorite"}, Default: DefaultPriorite},
			{Name: "statut", Keys: []string{"Statut", "statut"}, Default: DefaultStatut},
			{Name: "cause", Keys: []string{"Cause", "cause"}, Kind: KindCause},
			{Name: "administration", Keys: []string{"Administration", "administration"}},
			{Name: "gestionnaire", Keys: []string{"Gestionnaire", "Administration", "Agent"}},
			{Name: "agence", Keys: []string{"Agence", "agence"}},
			{Name: "description", Keys: []string{"Description", "description"}},
			{Name: "restrictions", Keys: []string{"Restrictions", "restrictions"}},
			{Name: "lineaire_inonde", Keys: []string{"Lineaire_inonde", "lineaire_inonde"}},
			{Name: "evolution", Keys: []string{"Evolution", "evolution"}},
			{Name: "prd", Keys: []string{"PRD", "prd"}},
			{Name: "prf", Keys: []string{"PRF", "prf"}},
			{Name: "agent", Keys: []string{"Agent", "agent"}},
			{Name: "contact", Keys: []string{"Contact", "contact"}},
			{Name: "utilisateur", Keys: []string{"Utilisateur", "utilisateur"}},
			{Name: "date_heure", Keys: []string{"Date_heure", "date_heure", "Date_debut", "date_debut"}, Kind: KindDate},
			{Name: "date_debut", Keys: []string{"Date_debut", "date_debut"}, Kind: KindDate},
			{Name: "date_fin", Keys: []string{"Date_fin", "date_fin"}, Kind: KindDate},
		},
	}
}

// CD44Schema maps the Loire-Atlantique department road table. Its exports
// name the road "RD" and the incident nature "Nature"; the operating agency
// doubles as gestionnaire.
func CD44Schema() Schema {
	return Schema{
		Key:              KeyCD44,
		Label:            "CD44",
		GeometryTypeKeys: []string{"geometrie_type"},
		Fields: []Field{
			{Name: "route", Keys: []string{"Route", "route", "RD", "rd"}},
			{Name: "commune", Keys: []string{"Commune", "commune", "Communes"}},
			{Name: "type_coupure", Keys: []string{"Type_coupure", "type_coupure", "Type", "type"}},
			{Name: "sens_circulation", Keys: []string{"Sens_circulation", "sens_circulation", "Sens"}, Default: DefaultSensCirculation},
			{Name: "priorite", Keys: []string{"Priorite", "priorite"}, Default: DefaultPriorite},
			{Name: "statut", Keys: []string{"Statut", "statut"}, Default: DefaultStatut},
			{Name: "cause", Keys: []string{"Cause", "cause", "Nature", "nature"}, Kind: KindCause},
			{Name: "administration", Keys: []string{"Administration", "administration"}},
			{Name: "gestionnaire", Keys: []string{"Gestionnaire", "gestionnaire", "Agence", "Administration"}},
			{Name: "agence", Keys: []string{"Agence", "agence", "Centre"}},
			{Name: "description", Keys: []string{"Description", "description", "Observations"}},
			{Name: "restrictions", Keys: []string{"Restrictions", "restrictions", "Deviation"}},
			{Name: "lineaire_inonde", Keys: []string{"Lineaire_inonde", "lineaire_inonde"}},
			{Name: "evolution", Keys: []string{"Evolution", "evolution"}},
			{Name: "date_heure", Keys: []string{"Date_heure", "date_heure", "Date_debut", "date_debut", "Date_publication"}, Kind: KindDate},
			{Name: "date_debut", Keys: []string{"Date_debut", "date_debut"}, Kind: KindDate},
			{Name: "date_fin", Keys: []string{"Date_fin", "date_fin"}, Kind: KindDate},
		},
	}
}

// RennesSchema maps the Rennes Métropole table. It accepts both the Grist
// column names and the metropolitan open-data export (voie, nature, date_deb,
// geo_shape / geo_point_2d), whose records carry their id in "recordid".
func RennesSchema() Schema {
	return Schema{
		Key:              KeyRennes,
		Label:            "Rennes Metropole",
		IDKeys:           []string{"recordid", "id"},
		GeometryTypeKeys: []string{"geometrie_type"},
		Fields: []Field{
			{Name: "route", Keys: []string{"Route", "route", "voie", "localisation"}},
			{Name: "commune", Keys: []string{"Commune", "commune", "nom_commune"}},
			{Name: "type_coupure", Keys: []string{"Type_coupure", "type_coupure", "type_perturbation"}},
			{Name: "sens_circulation", Keys: []string{"Sens_circulation", "sens_circulation"}, Default: DefaultSensCirculation},
			{Name: "priorite", Keys: []string{"Priorite", "priorite"}, Default: DefaultPriorite},
			{Name: "statut", Keys: []string{"Statut", "statut"}, Default: DefaultStatut},
			{Name: "cause", Keys: []string{"Cause", "cause", "nature", "libelle"}, Kind: KindCause},
			{Name: "administration", Keys: []string{"Administration", "administration"}},
			{Name: "gestionnaire", Keys: []string{"Gestionnaire", "gestionnaire", "maitre_ouvrage"}},
			{Name: "description", Keys: []string{"Description", "description", "detail", "commentaire"}},
			{Name: "restrictions", Keys: []string{"Restrictions", "restrictions"}},
			{Name: "evolution", Keys: []string{"Evolution", "evolution"}},
			{Name: "date_heure", Keys: []string{"Date_heure", "date_heure", "Date_debut", "date_debut", "date_deb"}, Kind: KindDate},
			{Name: "date_debut", Keys: []string{"Date_debut", "date_debut", "date_deb"}, Kind: KindDate},
			{Name: "date_fin", Keys: []string{"Date_fin", "date_fin"}, Kind: KindDate},
		},
	}
}

// NewCD35 returns the Ille-et-Vilaine adapter.
func NewCD35() *SchemaAdapter { return NewSchemaAdapter(CD35Schema()) }

// NewCD44 returns the Loire-Atlantique adapter.
func NewCD44() *SchemaAdapter { return NewSchemaAdapter(CD44Schema()) }

// NewRennes returns the Rennes Métropole adapter.
func NewRennes() *SchemaAdapter { return NewSchemaAdapter(RennesSchema()) }
