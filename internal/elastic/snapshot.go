package elastic

// ClusterStats is the decoded /_cluster/stats response.
// Numeric fields are value types: a field the cluster did not report reads
// as zero, which is the degraded-but-defined value the pipeline expects.
type ClusterStats struct {
	ClusterName string `json:"cluster_name"`
	Status      string `json:"status"`

	Indices struct {
		Count  float64 `json:"count"`
		Shards struct {
			Total       float64 `json:"total"`
			Primaries   float64 `json:"primaries"`
			Replication float64 `json:"replication"`
		} `json:"shards"`
		Docs struct {
			Count   float64 `json:"count"`
			Deleted float64 `json:"deleted"`
		} `json:"docs"`
		Store struct {
			SizeInBytes          float64 `json:"size_in_bytes"`
			ThrottleTimeInMillis float64 `json:"throttle_time_in_millis"`
		} `json:"store"`
		Segments struct {
			Count float64 `json:"count"`
		} `json:"segments"`
	} `json:"indices"`

	Nodes struct {
		Count struct {
			Total      float64 `json:"total"`
			MasterOnly float64 `json:"master_only"`
			DataOnly   float64 `json:"data_only"`
			MasterData float64 `json:"master_data"`
			Client     float64 `json:"client"`
		} `json:"count"`
		// Versions lists the Elasticsearch versions reported by cluster
		// members. Older clusters may repeat a version per node.
		Versions []string `json:"versions"`
	} `json:"nodes"`

	Raw []byte `json:"-"`
}

// NodesStats is the decoded /_nodes/stats response. Raw retains the
// undecoded body so config-defined extra metrics can be extracted by
// JSON path without re-fetching.
type NodesStats struct {
	ClusterName string               `json:"cluster_name"`
	Nodes       map[string]NodeStats `json:"nodes"`

	Raw []byte `json:"-"`
}

// NodeStats is the per-node subtree of /_nodes/stats.
type NodeStats struct {
	Name string `json:"name"`

	Indices struct {
		Docs struct {
			Count   float64 `json:"count"`
			Deleted float64 `json:"deleted"`
		} `json:"docs"`
		Store struct {
			SizeInBytes          float64 `json:"size_in_bytes"`
			ThrottleTimeInMillis float64 `json:"throttle_time_in_millis"`
		} `json:"store"`
		Indexing struct {
			IndexTotal         float64 `json:"index_total"`
			IndexTimeInMillis  float64 `json:"index_time_in_millis"`
			DeleteTotal        float64 `json:"delete_total"`
			DeleteTimeInMillis float64 `json:"delete_time_in_millis"`
		} `json:"indexing"`
		Get struct {
			Total        float64 `json:"total"`
			TimeInMillis float64 `json:"time_in_millis"`
		} `json:"get"`
		Search struct {
			QueryTotal        float64 `json:"query_total"`
			QueryTimeInMillis float64 `json:"query_time_in_millis"`
			FetchTotal        float64 `json:"fetch_total"`
			FetchTimeInMillis float64 `json:"fetch_time_in_millis"`
		} `json:"search"`
		Suggest struct {
			Total        float64 `json:"total"`
			TimeInMillis float64 `json:"time_in_millis"`
		} `json:"suggest"`
		Merges struct {
			Total             float64 `json:"total"`
			TotalTimeInMillis float64 `json:"total_time_in_millis"`
			TotalDocs         float64 `json:"total_docs"`
			TotalSizeInBytes  float64 `json:"total_size_in_bytes"`
		} `json:"merges"`
		Refresh struct {
			Total             float64 `json:"total"`
			TotalTimeInMillis float64 `json:"total_time_in_millis"`
		} `json:"refresh"`
		Flush struct {
			Total             float64 `json:"total"`
			TotalTimeInMillis float64 `json:"total_time_in_millis"`
		} `json:"flush"`
		Warmer struct {
			Total             float64 `json:"total"`
			TotalTimeInMillis float64 `json:"total_time_in_millis"`
		} `json:"warmer"`
		FilterCache struct {
			MemorySizeInBytes float64 `json:"memory_size_in_bytes"`
			Evictions         float64 `json:"evictions"`
		} `json:"filter_cache"`
		IDCache struct {
			MemorySizeInBytes float64 `json:"memory_size_in_bytes"`
		} `json:"id_cache"`
		Fielddata struct {
			MemorySizeInBytes float64 `json:"memory_size_in_bytes"`
			Evictions         float64 `json:"evictions"`
		} `json:"fielddata"`
		Completion struct {
			SizeInBytes float64 `json:"size_in_bytes"`
		} `json:"completion"`
		Segments struct {
			Count float64 `json:"count"`
		} `json:"segments"`
	} `json:"indices"`

	OS struct {
		// LoadAverage is absent on some platforms and Elasticsearch
		// versions; an empty slice means "not reported", not zero load.
		LoadAverage []float64 `json:"load_average"`
		Swap        struct {
			UsedInBytes float64 `json:"used_in_bytes"`
			FreeInBytes float64 `json:"free_in_bytes"`
		} `json:"swap"`
	} `json:"os"`

	Process struct {
		OpenFileDescriptors float64 `json:"open_file_descriptors"`
		CPU                 struct {
			Percent float64 `json:"percent"`
		} `json:"cpu"`
	} `json:"process"`

	JVM struct {
		Mem struct {
			HeapUsedPercent float64 `json:"heap_used_percent"`
		} `json:"mem"`
		GC struct {
			Collectors struct {
				Young GCCollector `json:"young"`
				Old   GCCollector `json:"old"`
			} `json:"collectors"`
		} `json:"gc"`
	} `json:"jvm"`

	ThreadPool struct {
		Generic ThreadPool `json:"generic"`
		Index   ThreadPool `json:"index"`
		Get     ThreadPool `json:"get"`
		Search  ThreadPool `json:"search"`
		Bulk    ThreadPool `json:"bulk"`
		Merge   ThreadPool `json:"merge"`
		Refresh ThreadPool `json:"refresh"`
		Flush   ThreadPool `json:"flush"`
		Warmer  ThreadPool `json:"warmer"`
		Suggest ThreadPool `json:"suggest"`
	} `json:"thread_pool"`

	FS struct {
		Total struct {
			DiskReadSizeInBytes  float64 `json:"disk_read_size_in_bytes"`
			DiskWriteSizeInBytes float64 `json:"disk_write_size_in_bytes"`
		} `json:"total"`
	} `json:"fs"`

	Transport struct {
		ServerOpen    float64 `json:"server_open"`
		RxSizeInBytes float64 `json:"rx_size_in_bytes"`
		TxSizeInBytes float64 `json:"tx_size_in_bytes"`
	} `json:"transport"`

	HTTP struct {
		TotalOpened float64 `json:"total_opened"`
	} `json:"http"`
}

// GCCollector holds one JVM garbage collector's cumulative totals.
type GCCollector struct {
	CollectionCount        float64 `json:"collection_count"`
	CollectionTimeInMillis float64 `json:"collection_time_in_millis"`
}

// ThreadPool holds one thread pool's stats.
type ThreadPool struct {
	Queue     float64 `json:"queue"`
	Completed float64 `json:"completed"`
}
