// Package factory provides a small generic registry used to build modules
// such as metrics sinks from configuration. A module is selected by its
// type string and receives the raw settings map, which it decodes into a
// typed struct with Decode.
//
//	reg := factory.NewRegistry[coremetrics.MetricsSink]()
//	reg.Register("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
//	    var c struct{ URL string `json:"url"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInfluxSink(c.URL), nil
//	})
package factory
